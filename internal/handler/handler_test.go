package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/internal/repository"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// stubStore backs a real service for handler-level tests. Only the import
// paths are exercised here; everything else returns zero values.
type stubStore struct {
	accountOwner int64
	insertErr    error

	jobID     string
	jobUserID int64
	jobStatus string
	jobReason string
}

func (s *stubStore) CreateUser(ctx context.Context, user *models.User) error { return nil }
func (s *stubStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}
func (s *stubStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (s *stubStore) CreateAccount(ctx context.Context, account *models.Account) error { return nil }
func (s *stubStore) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	return nil, nil
}
func (s *stubStore) FindAccountOwner(ctx context.Context, accountID int64) (int64, error) {
	return s.accountOwner, nil
}

func (s *stubStore) CreateImportJob(ctx context.Context, userID int64, sourceName string) (string, error) {
	s.jobID = "job-1"
	s.jobUserID = userID
	s.jobStatus = models.ImportJobPending
	return s.jobID, nil
}

func (s *stubStore) SetImportJobStatus(ctx context.Context, jobID, status, failureReason string) error {
	s.jobStatus = status
	s.jobReason = failureReason
	return nil
}

func (s *stubStore) FindImportJob(ctx context.Context, userID int64, jobID string) (*models.ImportJob, error) {
	if jobID != s.jobID || userID != s.jobUserID {
		return nil, fmt.Errorf("import job %s: %w", jobID, repository.ErrNotFound)
	}
	return &models.ImportJob{
		ID:            s.jobID,
		UserID:        s.jobUserID,
		Status:        s.jobStatus,
		FailureReason: s.jobReason,
	}, nil
}

func (s *stubStore) InsertTransactionChunk(ctx context.Context, userID int64, jobID string, records []models.Transaction, skipDuplicates bool) error {
	return s.insertErr
}

func (s *stubStore) ListTransactions(ctx context.Context, userID int64, filter repository.TransactionFilter) ([]models.Transaction, error) {
	return nil, nil
}
func (s *stubStore) CreateHolding(ctx context.Context, holding *models.Holding) error { return nil }
func (s *stubStore) ListHoldings(ctx context.Context, userID int64) ([]models.Holding, error) {
	return nil, nil
}
func (s *stubStore) ListHeldSymbols(ctx context.Context) ([]string, error) { return nil, nil }

func newTestHandler(store *stubStore) *Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{
		ImportChunkSize:   300,
		ImportDelimiter:   ",",
		ImportOnDuplicate: "duplicate",
	}
	return NewHandler(service.NewService(store, nil, nil, log, cfg))
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), "userID", "42"))
}

func importBody(t *testing.T, amountColumn string) string {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"source_name": "statement.csv",
		"account_id":  3,
		"data":        "Date,Description,Amount\n2024-01-05,Coffee,-4.50\n",
		"mapping": map[string]string{
			"date":        "Date",
			"description": "Description",
			"amount":      amountColumn,
		},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(body)
}

func TestImportTransactionsStatusCodes(t *testing.T) {
	tests := []struct {
		name         string
		store        *stubStore
		amountColumn string
		wantStatus   int
	}{
		{
			name:         "committed",
			store:        &stubStore{accountOwner: 42},
			amountColumn: "Amount",
			wantStatus:   http.StatusOK,
		},
		{
			name:         "unknown amount column",
			store:        &stubStore{accountOwner: 42},
			amountColumn: "NoSuchColumn",
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "foreign account",
			store:        &stubStore{accountOwner: 7},
			amountColumn: "Amount",
			wantStatus:   http.StatusForbidden,
		},
		{
			name:         "store failure",
			store:        &stubStore{accountOwner: 42, insertErr: fmt.Errorf("insert failed")},
			amountColumn: "Amount",
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.store)
			body := importBody(t, tt.amountColumn)

			rec := httptest.NewRecorder()
			h.ImportTransactions(rec, authedRequest("POST", "/imports", body))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestImportTransactionsUnsupportedFormat(t *testing.T) {
	h := newTestHandler(&stubStore{accountOwner: 42})

	body := `{"source_name":"s","account_id":3,"data":"x","format":"xlsx"}`
	rec := httptest.NewRecorder()
	h.ImportTransactions(rec, authedRequest("POST", "/imports", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGetImportJobEndpoint(t *testing.T) {
	store := &stubStore{accountOwner: 42, insertErr: fmt.Errorf("insert failed")}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.ImportTransactions(rec, authedRequest("POST", "/imports", importBody(t, "Amount")))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("import status = %d, want 500", rec.Code)
	}

	req := mux.SetURLVars(authedRequest("GET", "/imports/job-1", ""), map[string]string{"id": "job-1"})
	rec = httptest.NewRecorder()
	h.GetImportJob(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var job models.ImportJob
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.Status != models.ImportJobFailed {
		t.Errorf("status = %q, want failed", job.Status)
	}
	if job.FailureReason == "" {
		t.Error("failure reason not surfaced")
	}
}

func TestGetImportJobNotFound(t *testing.T) {
	h := newTestHandler(&stubStore{accountOwner: 42})

	req := mux.SetURLVars(authedRequest("GET", "/imports/missing", ""), map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.GetImportJob(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
