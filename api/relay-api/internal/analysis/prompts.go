// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_analysis

import (
	"github.com/flosch/pongo2/v6"
)

var analysisTemplate = pongo2.Must(pongo2.FromString(`You are a medical conversation analyzer. Extract ALL medical information from this conversation between a doctor and a patient.

Extract even when the text is short, such as "fever for 2 days".

Return ONLY valid JSON with this shape:
{
  "diseases_and_conditions": [{"name": "", "severity": "mild/moderate/severe/not specified", "mentioned_by": "doctor/patient/both"}],
  "symptoms": [{"symptom": "", "duration": "", "severity": ""}],
  "important_treatment_points": [{"category": "medication/diagnosis/history/vitals/instructions/lifestyle/other", "point": "", "priority": "high/medium/low"}],
  "medications": [{"name": "", "dosage": "", "frequency": "", "type": "current/prescribed/discontinued"}],
  "allergies": [],
  "medical_history": [],
  "follow_up": {"required": false, "timeframe": "", "instructions": ""},
  "red_flags": [],
  "summary": "Brief clinical summary"
}

Conversation:
{{ conversation|safe }}
`))

var verificationTemplate = pongo2.Must(pongo2.FromString(`You are a SENIOR MEDICAL DOCTOR reviewing a prescription for safety and appropriateness.

PATIENT INFORMATION:
Name: {{ patient_name|safe }}
Age: {{ patient_age }}
Symptoms:
{% for s in symptoms %}- {{ s|safe }}
{% empty %}Not specified
{% endfor %}Diagnosed Conditions:
{% for c in conditions %}- {{ c|safe }}
{% empty %}Not specified
{% endfor %}Medical History:
{% for h in medical_history %}- {{ h|safe }}
{% empty %}- None reported
{% endfor %}Known Allergies:
{% for a in allergies %}- {{ a|safe }}
{% empty %}- None known
{% endfor %}
PROPOSED PRESCRIPTION:
{% for m in medicines %}- {{ m|safe }}
{% endfor %}
Review age-appropriateness of each medicine and dosage, contraindications with the patient's conditions, allergy cross-reactions, drug-drug interactions and dosage safety for the patient's age.

Return ONLY valid JSON with this shape:
{
  "overall_safety": "safe/caution/unsafe",
  "can_prescribe": true,
  "verification_summary": "",
  "medicine_reviews": [{"medicine_name": "", "status": "approved/caution/rejected", "reason": "", "age_appropriate": true, "contraindications": [], "alternatives_if_rejected": []}],
  "drug_interactions": [{"medicines": [], "interaction_type": "mild/moderate/severe", "description": "", "recommendation": ""}],
  "dosage_concerns": [{"medicine": "", "concern": "", "recommended_adjustment": ""}],
  "red_flags": [],
  "recommendations": [],
  "senior_doctor_notes": ""
}
`))

func renderAnalysisPrompt(conversation string) (string, error) {
	return analysisTemplate.Execute(pongo2.Context{"conversation": conversation})
}

func renderVerificationPrompt(req VerificationRequest) (string, error) {
	return verificationTemplate.Execute(pongo2.Context{
		"patient_name":    req.PatientName,
		"patient_age":     req.PatientAge,
		"symptoms":        req.Symptoms,
		"conditions":      req.Conditions,
		"medical_history": req.MedicalHistory,
		"allergies":       req.Allergies,
		"medicines":       req.PrescribedMedicines,
	})
}
