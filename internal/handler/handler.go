package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fintrackhq/fintrack/internal/importer"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/fintrackhq/fintrack/internal/repository"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Account name is required", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	account, err := h.svc.CreateAccount(r.Context(), req.Name, req.Type, req.Currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// ListAccounts returns the caller's accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// ListTransactions returns the caller's transactions, filtered by the
// optional account_id, from, to, min_amount and max_amount query parameters
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter repository.TransactionFilter
	q := r.URL.Query()
	if v := q.Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid account_id", http.StatusBadRequest)
			return
		}
		filter.AccountID = id
	}
	filter.From = q.Get("from")
	filter.To = q.Get("to")
	if v := q.Get("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			http.Error(w, "Invalid min_amount", http.StatusBadRequest)
			return
		}
		filter.MinAmount = &d
	}
	if v := q.Get("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			http.Error(w, "Invalid max_amount", http.StatusBadRequest)
			return
		}
		filter.MaxAmount = &d
	}

	transactions, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// ImportTransactions runs a statement file through the import pipeline
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	var req service.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AccountID == 0 || req.Data == "" {
		http.Error(w, "account_id and data are required", http.StatusBadRequest)
		return
	}

	summary, err := h.svc.ImportTransactions(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), importErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// importErrorStatus classifies an import pipeline error: faults in the
// request itself (bad mapping, malformed statement, unknown format) are the
// caller's to fix, a foreign account is forbidden, and anything else is a
// store-side failure.
func importErrorStatus(err error) int {
	var mapErr *importer.MappingError
	switch {
	case errors.As(err, &mapErr),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrInvalidStatement):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForeignAccount):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// GetImportJob returns one import job so callers can poll a submitted
// import for its status and failure reason
func (h *Handler) GetImportJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	job, err := h.svc.GetImportJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetPrices resolves quotes for the requested symbols. Symbols that are
// neither cached nor fetchable are absent from the response map.
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	quotes, err := h.svc.ResolvePrices(r.Context(), req.Symbols)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prices": quotes})
}

// CreateHolding handles holding creation
func (h *Handler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID int64           `json:"account_id"`
		Symbol    string          `json:"symbol"`
		Quantity  decimal.Decimal `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" || req.AccountID == 0 {
		http.Error(w, "account_id and symbol are required", http.StatusBadRequest)
		return
	}

	holding, err := h.svc.CreateHolding(r.Context(), req.AccountID, req.Symbol, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrForeignAccount) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, holding)
}

// ListHoldings returns the caller's holdings
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.svc.ListHoldings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	writeJSON(w, http.StatusOK, holdings)
}
