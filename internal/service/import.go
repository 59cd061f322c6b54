package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintrackhq/fintrack/internal/importer"
	"github.com/fintrackhq/fintrack/internal/models"
)

// Errors the transport layer inspects to pick a response code. Everything
// else coming out of the import pipeline is a store-side failure.
var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrInvalidStatement  = errors.New("invalid statement file")
	ErrForeignAccount    = errors.New("account does not belong to user")
)

// ImportRequest describes one statement file import
type ImportRequest struct {
	SourceName string           `json:"source_name"`
	Format     string           `json:"format"` // "csv" (default) or "ofx"
	Data       string           `json:"data"`
	Mapping    importer.Mapping `json:"mapping"`
	AccountID  int64            `json:"account_id"`
}

// ImportTransactions runs the full import pipeline: parse the raw file, map
// and validate rows, open an import job, then commit the surviving records
// in fixed-size chunks. Each chunk is one bulk insert; a chunk failure
// aborts the remaining chunks and marks the job failed, but chunks already
// written stay committed. The caller decides whether to resubmit.
func (s *Service) ImportTransactions(ctx context.Context, req ImportRequest) (*models.ImportSummary, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	owner, err := s.store.FindAccountOwner(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrForeignAccount
	}

	var (
		headers []string
		rows    [][]string
		mapping = req.Mapping
	)
	switch req.Format {
	case "", "csv":
		headers, rows = importer.Parse(req.Data, s.config.ImportDelimiter)
	case "ofx":
		headers, rows, err = importer.ParseOFX(req.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStatement, err)
		}
		mapping = importer.OFXMapping
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, req.Format)
	}

	// A mapping failure rejects the whole import before any row is touched.
	records, dropped, err := importer.MapRows(headers, rows, mapping, req.AccountID)
	if err != nil {
		return nil, err
	}

	jobID, err := s.store.CreateImportJob(ctx, userID, req.SourceName)
	if err != nil {
		return nil, err
	}

	if err := s.commitChunks(ctx, userID, jobID, records); err != nil {
		s.finishJob(ctx, jobID, models.ImportJobFailed, err.Error())
		s.notifyImport(ctx, userID, req.SourceName, 0, err)
		return nil, err
	}
	s.finishJob(ctx, jobID, models.ImportJobCommitted, "")
	s.notifyImport(ctx, userID, req.SourceName, len(records), nil)

	s.log.Infof("Import %s committed: %d records, %d rows dropped", jobID, len(records), len(dropped))
	return &models.ImportSummary{
		JobID:    jobID,
		Imported: len(records),
		Dropped:  dropped,
	}, nil
}

// commitChunks writes records in input order, one bulk insert per chunk.
// There is no rollback across chunks: on error, chunks written so far
// remain in the store.
func (s *Service) commitChunks(ctx context.Context, userID int64, jobID string, records []models.Transaction) error {
	chunkSize := s.config.ImportChunkSize
	skipDuplicates := s.config.ImportOnDuplicate == "skip"
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.store.InsertTransactionChunk(ctx, userID, jobID, records[start:end], skipDuplicates); err != nil {
			return err
		}
	}
	return nil
}

// finishJob moves the job to a terminal status; a status-update failure is
// logged but never masks the import outcome
func (s *Service) finishJob(ctx context.Context, jobID, status, reason string) {
	if err := s.store.SetImportJobStatus(ctx, jobID, status, reason); err != nil {
		s.log.Errorf("Failed to mark import job %s %s: %v", jobID, status, err)
	}
}

func (s *Service) notifyImport(ctx context.Context, userID int64, sourceName string, imported int, jobErr error) {
	if s.notifier == nil {
		return
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		s.log.Errorf("Failed to load user %d for notification: %v", userID, err)
		return
	}
	if err := s.notifier.SendImportNotification(user.Email, user.Username, sourceName, imported, jobErr); err != nil {
		s.log.Errorf("Failed to send import notification to %s: %v", user.Email, err)
	}
}
