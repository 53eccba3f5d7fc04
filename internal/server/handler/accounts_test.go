package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccountService struct {
	accounts map[string]domain.Account
	created  []domain.Account
	err      error
}

func (f *fakeAccountService) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if f.err != nil {
		return domain.Account{}, f.err
	}
	a.ID = "acc-1"
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAccountService) Update(ctx context.Context, a domain.Account) (domain.Account, error) {
	if f.err != nil {
		return domain.Account{}, f.err
	}
	return a, nil
}

func (f *fakeAccountService) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountService) List(ctx context.Context) ([]domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Account
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func TestCreateAccountAcceptsCredentials(t *testing.T) {
	svc := &fakeAccountService{}
	h := NewAccountHandler(svc, testLogger())

	body := `{"name":"Main","kind":"cex","exchange":"binance","apiKey":"k","apiSecret":"s","active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateAccount(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "k", svc.created[0].APIKey)
	assert.Equal(t, "s", svc.created[0].APISecret)

	// Credentials never round-trip into the response body.
	assert.NotContains(t, rec.Body.String(), `"apiSecret"`)
	assert.NotContains(t, rec.Body.String(), `"s"`)
}

func TestCreateAccountRejectsInvalid(t *testing.T) {
	svc := &fakeAccountService{err: domain.ErrInvalid}
	h := NewAccountHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(`{"name":""}`))
	rec := httptest.NewRecorder()

	h.CreateAccount(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAccountRejectsMalformedBody(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	h.CreateAccount(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAccountNotFound(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{accounts: map[string]domain.Account{}}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	h.GetAccount(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAccountsEmptyIsArray(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()

	h.ListAccounts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Accounts []domain.Account `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Accounts)
	assert.Empty(t, resp.Accounts)
}

func TestDeleteAccount(t *testing.T) {
	svc := &fakeAccountService{accounts: map[string]domain.Account{
		"acc-1": {ID: "acc-1", Name: "Main"},
	}}
	h := NewAccountHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/accounts/acc-1", nil)
	req.SetPathValue("id", "acc-1")
	rec := httptest.NewRecorder()

	h.DeleteAccount(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.accounts)
}
