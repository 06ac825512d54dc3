package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/wallet-service/dto"
)

type fakeRepo struct {
	balance  int64
	credits  map[string]int64 // external_ref -> amount
	reserves []string
	commits  []string
	refunds  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balance: 10000, credits: map[string]int64{}}
}

func (f *fakeRepo) GetOrCreateWallet(ctx context.Context, userID string) (string, int64, error) {
	return "w1", f.balance, nil
}

func (f *fakeRepo) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	f.balance += amount
	return "w1", f.balance, nil
}

func (f *fakeRepo) Credit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	if userID == "desconhecido" {
		return "", 0, sql.ErrNoRows
	}
	// idempotente por external_ref
	if _, seen := f.credits[externalRef]; !seen {
		f.credits[externalRef] = amount
		f.balance += amount
	}
	return "w1", f.balance, nil
}

func (f *fakeRepo) Reserve(ctx context.Context, userID string, amount int64, externalRef string) (string, error) {
	f.reserves = append(f.reserves, externalRef)
	return "r1", nil
}

func (f *fakeRepo) Commit(ctx context.Context, userID, externalRef string) error {
	f.commits = append(f.commits, externalRef)
	return nil
}

func (f *fakeRepo) Refund(ctx context.Context, userID, externalRef string) error {
	f.refunds = append(f.refunds, externalRef)
	return nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetWallet(t *testing.T) {
	srv := NewServer(zap.NewNop(), newFakeRepo())
	h := srv.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet?userId=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, int64(10000), resp.BalanceCents)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreditIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	h := NewServer(zap.NewNop(), repo).Router()

	body := dto.CreditRequest{UserID: "u1", AmountCents: 500, ExternalRef: "b1"}

	rec := doJSON(t, h, http.MethodPost, "/wallet/credit", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// reprocessamento do mesmo payout não duplica o crédito
	rec = doJSON(t, h, http.MethodPost, "/wallet/credit", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10500), resp.BalanceCents)
}

func TestCreditValidation(t *testing.T) {
	h := NewServer(zap.NewNop(), newFakeRepo()).Router()

	rec := doJSON(t, h, http.MethodPost, "/wallet/credit", dto.CreditRequest{UserID: "u1", AmountCents: 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code) // sem external_ref

	rec = doJSON(t, h, http.MethodPost, "/wallet/credit", dto.CreditRequest{UserID: "u1", AmountCents: -1, ExternalRef: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/wallet/credit", dto.CreditRequest{UserID: "desconhecido", AmountCents: 500, ExternalRef: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReserveCommitRefund(t *testing.T) {
	repo := newFakeRepo()
	h := NewServer(zap.NewNop(), repo).Router()

	rec := doJSON(t, h, http.MethodPost, "/wallet/reserve", dto.ReserveRequest{UserID: "u1", AmountCents: 1000, ExternalRef: "b1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resv dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resv))
	assert.Equal(t, "r1", resv.ReservationID)
	assert.Equal(t, "PENDING", resv.Status)

	rec = doJSON(t, h, http.MethodPost, "/wallet/commit", dto.CommitRequest{UserID: "u1", ExternalRef: "b1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/wallet/refund", dto.RefundRequest{UserID: "u1", ExternalRef: "b1"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"b1"}, repo.reserves)
	assert.Equal(t, []string{"b1"}, repo.commits)
	assert.Equal(t, []string{"b1"}, repo.refunds)
}
