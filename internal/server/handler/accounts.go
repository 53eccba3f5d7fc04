package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"folioscope/internal/domain"
)

// AccountService defines what the account handler needs from the
// service layer.
type AccountService interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	Update(ctx context.Context, a domain.Account) (domain.Account, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// AccountHandler serves the account configuration endpoints.
type AccountHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler with the given service
// and logger.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// accountRequest is the write payload for accounts. Credentials are
// accepted here but never serialized back out; domain.Account excludes
// them from JSON responses.
type accountRequest struct {
	Name          string                `json:"name"`
	Kind          domain.AccountKind    `json:"kind"`
	Address       string                `json:"address"`
	Chains        []string              `json:"chains"`
	PerpExchanges []domain.PerpExchange `json:"perpExchanges"`
	Exchange      domain.CexExchange    `json:"exchange"`
	APIKey        string                `json:"apiKey"`
	APISecret     string                `json:"apiSecret"`
	Active        bool                  `json:"active"`
	UseDemoData   bool                  `json:"useDemoData"`
}

func (req accountRequest) toAccount() domain.Account {
	return domain.Account{
		Name:          req.Name,
		Kind:          req.Kind,
		Address:       req.Address,
		Chains:        req.Chains,
		PerpExchanges: req.PerpExchanges,
		Exchange:      req.Exchange,
		APIKey:        req.APIKey,
		APISecret:     req.APISecret,
		Active:        req.Active,
		UseDemoData:   req.UseDemoData,
	}
}

// listAccountsResponse wraps the list accounts response.
type listAccountsResponse struct {
	Accounts []domain.Account `json:"accounts"`
}

// ListAccounts returns every configured account.
// GET /api/accounts
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list accounts failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}

	writeJSON(w, http.StatusOK, listAccountsResponse{Accounts: accounts})
}

// GetAccount returns one account by its ID.
// GET /api/accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account id")
		return
	}

	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get account failed",
			slog.String("account_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// CreateAccount creates a new account from a JSON body.
// POST /api/accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	account, err := h.accounts.Create(r.Context(), req.toAccount())
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) || errors.Is(err, domain.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "account already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create account failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// UpdateAccount replaces an existing account's configuration. An empty
// apiSecret in the body keeps the stored secret.
// PUT /api/accounts/{id}
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account id")
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	account := req.toAccount()
	account.ID = id

	updated, err := h.accounts.Update(r.Context(), account)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) || errors.Is(err, domain.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update account failed",
			slog.String("account_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteAccount removes an account and the manual positions it owns.
// DELETE /api/accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account id")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete account failed",
			slog.String("account_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "deleted",
		"account_id": id,
	})
}
