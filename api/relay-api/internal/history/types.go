// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_history

import (
	"time"

	"gorm.io/gorm"

	internal_type "github.com/samvaad/api/relay-api/internal/type"
)

// Record status constants.
const (
	StatusOpen       = "open"       // turns are still being appended
	StatusSummarized = "summarized" // the post-consultation summary was saved
)

// ConsultationRecord is one consultation of one patient. The patient
// identifier is stored encrypted with a random nonce, so two records of the
// same patient never share ciphertext and lookups decrypt every candidate.
type ConsultationRecord struct {
	Id                  uint64 `json:"id" gorm:"primaryKey;<-:create"`
	SessionID           string `json:"sessionId" gorm:"column:session_id;type:varchar(36);not null;uniqueIndex"`
	EncryptedIdentifier string `json:"-" gorm:"column:encrypted_identifier;type:text;not null"`
	PatientName         string `json:"patientName" gorm:"column:patient_name;type:varchar(200);not null;default:''"`
	PatientAge          int    `json:"patientAge" gorm:"column:patient_age;not null;default:0"`
	Status              string `json:"status" gorm:"column:status;type:varchar(20);not null;default:open"`

	// last turn, kept for list views
	SourceText     string `json:"sourceText" gorm:"column:source_text;type:text;not null;default:''"`
	TranslatedText string `json:"translatedText" gorm:"column:translated_text;type:text;not null;default:''"`
	SourceLang     string `json:"sourceLang" gorm:"column:source_lang;type:varchar(20);not null;default:''"`
	TargetLang     string `json:"targetLang" gorm:"column:target_lang;type:varchar(20);not null;default:''"`

	Diseases           []string `json:"diseases" gorm:"column:diseases;type:text;serializer:json"`
	Symptoms           []string `json:"symptoms" gorm:"column:symptoms;type:text;serializer:json"`
	KeyTreatmentPoints []string `json:"keyTreatmentPoints" gorm:"column:key_treatment_points;type:text;serializer:json"`
	RedFlags           []string `json:"redFlags" gorm:"column:red_flags;type:text;serializer:json"`
	Prescription       string   `json:"prescription" gorm:"column:prescription;type:text;not null;default:''"`
	Summary            string   `json:"summary" gorm:"column:summary;type:text;not null;default:''"`

	CreatedDate time.Time `json:"createdDate" gorm:"type:timestamp;not null;<-:create"`
	UpdatedDate time.Time `json:"updatedDate" gorm:"type:timestamp;default:null"`

	Turns []*ConversationTurn `json:"conversations" gorm:"foreignKey:RecordId"`

	// Identifier is filled in after decryption and never persisted.
	Identifier string `json:"identifier" gorm:"-"`
}

func (ConsultationRecord) TableName() string {
	return "consultation_records"
}

func (r *ConsultationRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.CreatedDate.IsZero() {
		r.CreatedDate = time.Now()
	}
	if r.Status == "" {
		r.Status = StatusOpen
	}
	return nil
}

// ConversationTurn is one persisted utterance.
type ConversationTurn struct {
	Id             uint64    `json:"id" gorm:"primaryKey;<-:create"`
	RecordId       uint64    `json:"-" gorm:"column:record_id;not null;index"`
	UtteranceID    string    `json:"utteranceId" gorm:"column:utterance_id;type:varchar(36);not null;uniqueIndex"`
	Sequence       uint64    `json:"sequence" gorm:"column:sequence;not null"`
	Speaker        string    `json:"speaker" gorm:"column:speaker;type:varchar(20);not null"`
	OriginalText   string    `json:"originalText" gorm:"column:original_text;type:text;not null"`
	TranslatedText string    `json:"translatedText" gorm:"column:translated_text;type:text;not null"`
	SourceLang     string    `json:"sourceLang" gorm:"column:source_lang;type:varchar(20);not null"`
	TargetLang     string    `json:"targetLang" gorm:"column:target_lang;type:varchar(20);not null"`
	SpokenAt       time.Time `json:"timestamp" gorm:"column:spoken_at;type:timestamp;not null"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// TurnFromUtterance maps a transcript entry onto its persisted form.
func TurnFromUtterance(u internal_type.Utterance) *ConversationTurn {
	speaker, _ := u.Speaker.MarshalText()
	return &ConversationTurn{
		UtteranceID:    u.ID,
		Sequence:       u.Sequence,
		Speaker:        string(speaker),
		OriginalText:   u.OriginalText,
		TranslatedText: u.TranslatedText,
		SourceLang:     u.SourceLang,
		TargetLang:     u.TargetLang,
		SpokenAt:       u.Timestamp,
	}
}

// RecordKey addresses the record of one consultation.
type RecordKey struct {
	SessionID   string
	Identifier  string
	PatientName string
	PatientAge  int
}

// TranscriptSummary is what the post-consultation analysis contributes.
type TranscriptSummary struct {
	Diseases           []string
	Symptoms           []string
	KeyTreatmentPoints []string
	RedFlags           []string
	Prescription       string
	Summary            string
}
