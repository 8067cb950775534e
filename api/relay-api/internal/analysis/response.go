// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_analysis

import (
	"fmt"
	"strings"
)

// analysisResponse mirrors the JSON the model is asked to produce.
type analysisResponse struct {
	Diseases []struct {
		Name        string `json:"name"`
		Severity    string `json:"severity"`
		MentionedBy string `json:"mentioned_by"`
	} `json:"diseases_and_conditions"`
	Symptoms []struct {
		Symptom  string `json:"symptom"`
		Duration string `json:"duration"`
		Severity string `json:"severity"`
	} `json:"symptoms"`
	TreatmentPoints []struct {
		Category string `json:"category"`
		Point    string `json:"point"`
		Priority string `json:"priority"`
	} `json:"important_treatment_points"`
	Medications []struct {
		Name      string `json:"name"`
		Dosage    string `json:"dosage"`
		Frequency string `json:"frequency"`
		Type      string `json:"type"`
	} `json:"medications"`
	Allergies      []string `json:"allergies"`
	MedicalHistory []string `json:"medical_history"`
	FollowUp       struct {
		Required     bool   `json:"required"`
		Timeframe    string `json:"timeframe"`
		Instructions string `json:"instructions"`
	} `json:"follow_up"`
	RedFlags []string `json:"red_flags"`
	Summary  string   `json:"summary"`
}

// simplify keeps names only and drops low priority treatment points.
func (r analysisResponse) simplify() *AnalysisResult {
	out := &AnalysisResult{
		Diseases:              []string{},
		Symptoms:              []string{},
		KeyTreatmentPoints:    []string{},
		RedFlags:              orEmpty(r.RedFlags),
		Summary:               strings.TrimSpace(r.Summary),
		MedicationsPrescribed: []string{},
		FollowUpRequired:      r.FollowUp.Required,
		FollowUpTimeframe:     r.FollowUp.Timeframe,
		AllMedications:        []string{},
		MedicalHistory:        orEmpty(r.MedicalHistory),
		Allergies:             orEmpty(r.Allergies),
	}
	for _, d := range r.Diseases {
		if d.Name != "" {
			out.Diseases = append(out.Diseases, d.Name)
		}
	}
	for _, s := range r.Symptoms {
		if s.Symptom != "" {
			out.Symptoms = append(out.Symptoms, s.Symptom)
		}
	}
	for _, p := range r.TreatmentPoints {
		switch strings.ToLower(p.Priority) {
		case "high", "medium":
			out.KeyTreatmentPoints = append(out.KeyTreatmentPoints, p.Point)
		}
	}
	for _, m := range r.Medications {
		dosage := m.Dosage
		if dosage == "" {
			dosage = "dosage not specified"
		}
		line := fmt.Sprintf("%s - %s", m.Name, dosage)
		out.AllMedications = append(out.AllMedications, line)
		if strings.EqualFold(m.Type, "prescribed") {
			out.MedicationsPrescribed = append(out.MedicationsPrescribed, line)
		}
	}
	return out
}

type verificationResponse struct {
	OverallSafety       string `json:"overall_safety"`
	CanPrescribe        bool   `json:"can_prescribe"`
	VerificationSummary string `json:"verification_summary"`
	MedicineReviews     []struct {
		MedicineName      string   `json:"medicine_name"`
		Status            string   `json:"status"`
		Reason            string   `json:"reason"`
		AgeAppropriate    bool     `json:"age_appropriate"`
		Contraindications []string `json:"contraindications"`
		Alternatives      []string `json:"alternatives_if_rejected"`
	} `json:"medicine_reviews"`
	DrugInteractions []struct {
		Medicines       []string `json:"medicines"`
		InteractionType string   `json:"interaction_type"`
		Description     string   `json:"description"`
		Recommendation  string   `json:"recommendation"`
	} `json:"drug_interactions"`
	DosageConcerns []struct {
		Medicine              string `json:"medicine"`
		Concern               string `json:"concern"`
		RecommendedAdjustment string `json:"recommended_adjustment"`
	} `json:"dosage_concerns"`
	RedFlags          []string `json:"red_flags"`
	Recommendations   []string `json:"recommendations"`
	SeniorDoctorNotes string   `json:"senior_doctor_notes"`
}

func (r verificationResponse) toResult() *VerificationResult {
	out := &VerificationResult{
		CanPrescribe:        r.CanPrescribe,
		OverallSafety:       strings.ToLower(strings.TrimSpace(r.OverallSafety)),
		VerificationSummary: r.VerificationSummary,
		MedicineReviews:     make([]MedicineReview, 0, len(r.MedicineReviews)),
		DrugInteractions:    make([]DrugInteraction, 0, len(r.DrugInteractions)),
		DosageConcerns:      make([]DosageConcern, 0, len(r.DosageConcerns)),
		RedFlags:            orEmpty(r.RedFlags),
		Recommendations:     orEmpty(r.Recommendations),
		SeniorDoctorNotes:   r.SeniorDoctorNotes,
	}
	for _, m := range r.MedicineReviews {
		out.MedicineReviews = append(out.MedicineReviews, MedicineReview{
			MedicineName:      m.MedicineName,
			Status:            m.Status,
			Reason:            m.Reason,
			AgeAppropriate:    m.AgeAppropriate,
			Contraindications: orEmpty(m.Contraindications),
			Alternatives:      orEmpty(m.Alternatives),
		})
	}
	for _, d := range r.DrugInteractions {
		out.DrugInteractions = append(out.DrugInteractions, DrugInteraction{
			Medicines:       orEmpty(d.Medicines),
			InteractionType: d.InteractionType,
			Description:     d.Description,
			Recommendation:  d.Recommendation,
		})
	}
	for _, d := range r.DosageConcerns {
		out.DosageConcerns = append(out.DosageConcerns, DosageConcern(d))
	}
	return out
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
