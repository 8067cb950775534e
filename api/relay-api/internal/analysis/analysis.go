// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
	"github.com/samvaad/pkg/commons"
)

// minConversationLength is the shortest serialized transcript worth analyzing.
const minConversationLength = 10

var (
	ErrEmptyTranscript            = errors.New("transcript too short to analyze")
	ErrInvalidVerificationRequest = errors.New("invalid verification request")
)

// AnalysisResult is the clinical digest of a consultation.
type AnalysisResult struct {
	Diseases              []string `json:"diseases"`
	Symptoms              []string `json:"symptoms"`
	KeyTreatmentPoints    []string `json:"key_treatment_points"`
	RedFlags              []string `json:"red_flags"`
	Summary               string   `json:"summary"`
	MedicationsPrescribed []string `json:"medications_prescribed"`
	FollowUpRequired      bool     `json:"follow_up_required"`
	FollowUpTimeframe     string   `json:"follow_up_timeframe"`
	AllMedications        []string `json:"all_medications"`
	MedicalHistory        []string `json:"medical_history"`
	Allergies             []string `json:"allergies"`
}

type VerificationRequest struct {
	PrescribedMedicines []string `json:"prescribedMedicines" validate:"required,min=1,dive,required"`
	PatientName         string   `json:"patientName" validate:"required"`
	PatientAge          int      `json:"patientAge" validate:"gte=1,lte=150"`
	Symptoms            []string `json:"symptoms"`
	Conditions          []string `json:"conditions"`
	MedicalHistory      []string `json:"medicalHistory"`
	Allergies           []string `json:"allergies"`
}

type MedicineReview struct {
	MedicineName      string   `json:"medicineName"`
	Status            string   `json:"status"`
	Reason            string   `json:"reason"`
	AgeAppropriate    bool     `json:"ageAppropriate"`
	Contraindications []string `json:"contraindications"`
	Alternatives      []string `json:"alternatives"`
}

type DrugInteraction struct {
	Medicines       []string `json:"medicines"`
	InteractionType string   `json:"interactionType"`
	Description     string   `json:"description"`
	Recommendation  string   `json:"recommendation"`
}

type DosageConcern struct {
	Medicine              string `json:"medicine"`
	Concern               string `json:"concern"`
	RecommendedAdjustment string `json:"recommendedAdjustment"`
}

type VerificationResult struct {
	CanPrescribe        bool              `json:"canPrescribe"`
	OverallSafety       string            `json:"overallSafety" validate:"oneof=safe caution unsafe"`
	VerificationSummary string            `json:"verificationSummary"`
	MedicineReviews     []MedicineReview  `json:"medicineReviews"`
	DrugInteractions    []DrugInteraction `json:"drugInteractions"`
	DosageConcerns      []DosageConcern   `json:"dosageConcerns"`
	RedFlags            []string          `json:"redFlags"`
	Recommendations     []string          `json:"recommendations"`
	SeniorDoctorNotes   string            `json:"seniorDoctorNotes"`
}

// Analyzer runs the post-consultation analysis and prescription review.
type Analyzer interface {
	Analyze(ctx context.Context, transcript []internal_type.Utterance) (*AnalysisResult, error)
	Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error)
}

type analyzer struct {
	logger    commons.Logger
	generator Generator
	validate  *validator.Validate
}

func NewAnalyzer(logger commons.Logger, generator Generator) Analyzer {
	return &analyzer{logger: logger, generator: generator, validate: validator.New()}
}

func (a *analyzer) Analyze(ctx context.Context, transcript []internal_type.Utterance) (*AnalysisResult, error) {
	conversation := internal_type.SerializeTranscript(transcript)
	if len(strings.TrimSpace(conversation)) < minConversationLength {
		return nil, ErrEmptyTranscript
	}
	prompt, err := renderAnalysisPrompt(conversation)
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", internal_type.ErrAnalysisUnavailable, err)
	}

	start := time.Now()
	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Errorf("analysis via %s failed: %v", a.generator.Name(), err)
		return nil, fmt.Errorf("%w: %v", internal_type.ErrAnalysisUnavailable, err)
	}

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		a.logger.Errorf("analysis response was not json: %v", err)
		return nil, fmt.Errorf("%w: unparsable response: %v", internal_type.ErrAnalysisUnavailable, err)
	}
	result := parsed.simplify()
	a.logger.Infof("analysis completed in %s: diseases=%d symptoms=%d red_flags=%d",
		time.Since(start), len(result.Diseases), len(result.Symptoms), len(result.RedFlags))
	return result, nil
}

func (a *analyzer) Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVerificationRequest, err)
	}
	prompt, err := renderVerificationPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", internal_type.ErrVerificationUnavailable, err)
	}

	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Errorf("verification via %s failed: %v", a.generator.Name(), err)
		return nil, fmt.Errorf("%w: %v", internal_type.ErrVerificationUnavailable, err)
	}

	var parsed verificationResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparsable response: %v", internal_type.ErrVerificationUnavailable, err)
	}
	result := parsed.toResult()
	if err := a.validate.Struct(result); err != nil {
		return nil, fmt.Errorf("%w: %v", internal_type.ErrVerificationUnavailable, err)
	}
	a.logger.Infof("verification completed: safety=%s can_prescribe=%t medicines=%d",
		result.OverallSafety, result.CanPrescribe, len(req.PrescribedMedicines))
	return result, nil
}
