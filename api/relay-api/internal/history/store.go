// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samvaad/pkg/commons"
	"github.com/samvaad/pkg/connectors"
)

const scanBatchSize = 200

var ErrMissingIdentifier = errors.New("patient identifier is required for history")

// Store persists consultation history.
//
// A consultation record is created lazily by whichever write reaches it
// first and is addressed by its session id afterwards. The patient identifier
// is only ever written encrypted, so FindByIdentifier has to decrypt every
// record and compare plaintexts.
type Store interface {
	// AppendConversationTurn records one finalized utterance. Appending the
	// same utterance twice is a no-op.
	AppendConversationTurn(ctx context.Context, key RecordKey, turn *ConversationTurn) error

	// SaveTranscriptSummary stores the analysis outcome and marks the record
	// summarized.
	SaveTranscriptSummary(ctx context.Context, key RecordKey, summary TranscriptSummary) error

	// FindByIdentifier returns every record of the patient, newest first,
	// with their turns in spoken order.
	FindByIdentifier(ctx context.Context, identifier string) ([]*ConsultationRecord, error)

	Migrate(ctx context.Context) error
}

type postgresStore struct {
	postgres connectors.PostgresConnector
	cipher   Cipher
	logger   commons.Logger
}

// NewStore creates a history store backed by the given gorm connection.
func NewStore(postgres connectors.PostgresConnector, cipher Cipher, logger commons.Logger) Store {
	return &postgresStore{
		postgres: postgres,
		cipher:   cipher,
		logger:   logger,
	}
}

func (s *postgresStore) Migrate(ctx context.Context) error {
	if err := s.postgres.DB(ctx).AutoMigrate(&ConsultationRecord{}, &ConversationTurn{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return nil
}

// ensureRecord loads the record of key.SessionID, creating it on first use.
func (s *postgresStore) ensureRecord(tx *gorm.DB, key RecordKey) (*ConsultationRecord, error) {
	if key.Identifier == "" {
		return nil, ErrMissingIdentifier
	}
	var rec ConsultationRecord
	err := tx.Where("session_id = ?", key.SessionID).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load history record %s: %w", key.SessionID, err)
	}

	sealed, err := s.cipher.Encrypt(key.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt identifier: %w", err)
	}
	rec = ConsultationRecord{
		SessionID:           key.SessionID,
		EncryptedIdentifier: sealed,
		PatientName:         key.PatientName,
		PatientAge:          key.PatientAge,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create history record %s: %w", key.SessionID, err)
	}
	s.logger.Infof("created history record: session=%s id=%d", key.SessionID, rec.Id)
	return &rec, nil
}

func (s *postgresStore) AppendConversationTurn(ctx context.Context, key RecordKey, turn *ConversationTurn) error {
	return s.postgres.DB(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.ensureRecord(tx, key)
		if err != nil {
			return err
		}

		turn.RecordId = rec.Id
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "utterance_id"}},
			DoNothing: true,
		}).Create(turn)
		if result.Error != nil {
			return fmt.Errorf("failed to append turn %s: %w", turn.UtteranceID, result.Error)
		}
		if result.RowsAffected == 0 {
			s.logger.Debugf("turn %s already recorded for session %s", turn.UtteranceID, key.SessionID)
			return nil
		}

		err = tx.Model(rec).Updates(map[string]interface{}{
			"source_text":     turn.OriginalText,
			"translated_text": turn.TranslatedText,
			"source_lang":     turn.SourceLang,
			"target_lang":     turn.TargetLang,
			"updated_date":    time.Now(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update history record %s: %w", key.SessionID, err)
		}

		s.logger.Debugf("appended turn: session=%s sequence=%d speaker=%s", key.SessionID, turn.Sequence, turn.Speaker)
		return nil
	})
}

func (s *postgresStore) SaveTranscriptSummary(ctx context.Context, key RecordKey, summary TranscriptSummary) error {
	return s.postgres.DB(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.ensureRecord(tx, key)
		if err != nil {
			return err
		}
		err = tx.Model(rec).
			Select("diseases", "symptoms", "key_treatment_points", "red_flags", "prescription", "summary", "status", "updated_date").
			Updates(&ConsultationRecord{
				Diseases:           nonNil(summary.Diseases),
				Symptoms:           nonNil(summary.Symptoms),
				KeyTreatmentPoints: nonNil(summary.KeyTreatmentPoints),
				RedFlags:           nonNil(summary.RedFlags),
				Prescription:       summary.Prescription,
				Summary:            summary.Summary,
				Status:             StatusSummarized,
				UpdatedDate:        time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to save summary for %s: %w", key.SessionID, err)
		}
		s.logger.Infof("saved transcript summary: session=%s record=%d", key.SessionID, rec.Id)
		return nil
	})
}

func (s *postgresStore) FindByIdentifier(ctx context.Context, identifier string) ([]*ConsultationRecord, error) {
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}
	start := time.Now()
	db := s.postgres.DB(ctx)

	var (
		ids     []uint64
		scanned int
		batch   []*ConsultationRecord
	)
	result := db.Select("id", "encrypted_identifier").
		Order("id").
		FindInBatches(&batch, scanBatchSize, func(tx *gorm.DB, _ int) error {
			for _, rec := range batch {
				scanned++
				plain, err := s.cipher.Decrypt(rec.EncryptedIdentifier)
				if err != nil {
					s.logger.Warnf("skipping history record %d: %v", rec.Id, err)
					continue
				}
				if plain == identifier {
					ids = append(ids, rec.Id)
				}
			}
			return nil
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to scan history: %w", result.Error)
	}
	s.logger.Benchmark("history.FindByIdentifier.scan", time.Since(start))

	if len(ids) == 0 {
		return []*ConsultationRecord{}, nil
	}

	var records []*ConsultationRecord
	err := db.Preload("Turns", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence")
	}).Where("id IN ?", ids).Order("created_date DESC").Order("id DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history records: %w", err)
	}
	for _, rec := range records {
		rec.Identifier = identifier
	}
	s.logger.Debugf("history lookup matched %d of %d records", len(records), scanned)
	return records, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
