package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/escrow"
	"rentacar-escrow-backend/internal/notify"
	"rentacar-escrow-backend/internal/security"
	"rentacar-escrow-backend/internal/statestore"
)

const operatorSecret = "test-operator-secret"

type stubLedger struct {
	err   error
	calls int
}

func (s *stubLedger) Transfer(_ context.Context, _ string, _, _ domain.Principal, _ int64) error {
	s.calls++
	return s.err
}

type testServer struct {
	server *httptest.Server
	ledger *stubLedger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := statestore.New(statestore.NewMemoryBackend())
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	gate := security.NewTokenGate(tokens)
	hash, err := security.HashSecret(operatorSecret)
	require.NoError(t, err)

	ledger := &stubLedger{}
	svc := escrow.NewService(store, gate, ledger, notify.NewLogNotifier(), "GESCROW")
	require.NoError(t, svc.Initialize(context.Background(), "GADMIN", "usdc"))

	router := mux.NewRouter()
	RegisterRoutes(router, svc, tokens, security.NewOperatorCredential(hash))

	ts := &testServer{server: httptest.NewServer(router), ledger: ledger}
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) mintToken(t *testing.T, principal string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/auth/token", "", mintTokenRequest{Principal: principal, Secret: operatorSecret})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body mintTokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Token
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestMintToken(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		token := ts.mintToken(t, "GRENTER")
		assert.NotEmpty(t, token)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/auth/token", "", mintTokenRequest{Principal: "GRENTER", Secret: "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("InvalidPrincipal", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/auth/token", "", mintTokenRequest{Principal: "bad/addr", Secret: operatorSecret})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRentalLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.mintToken(t, "GADMIN")
	renter := ts.mintToken(t, "GRENTER")
	owner := ts.mintToken(t, "GOWNER")

	// Admin sets the fee and lists the owner's car.
	resp := ts.do(t, http.MethodPut, "/admin/fee", admin, setFeeRequest{Fee: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/cars", admin, addCarRequest{Owner: "GOWNER", PricePerDay: 50})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Renter rents for 5 days at amount 100.
	resp = ts.do(t, http.MethodPost, "/rentals", renter, rentalRequest{
		Renter: "GRENTER", Owner: "GOWNER", TotalDaysToRent: 5, Amount: 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, ts.ledger.calls)

	resp = ts.do(t, http.MethodGet, "/cars/GOWNER/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var statusBody map[string]string
	decodeBody(t, resp, &statusBody)
	assert.Equal(t, "RENTED", statusBody["status"])

	resp = ts.do(t, http.MethodGet, "/cars/GOWNER/balance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balanceBody map[string]int64
	decodeBody(t, resp, &balanceBody)
	assert.Equal(t, int64(100), balanceBody["available_to_withdraw"])

	resp = ts.do(t, http.MethodGet, "/contract/balance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &balanceBody)
	assert.Equal(t, int64(110), balanceBody["balance"])

	// Second rental conflicts.
	second := ts.mintToken(t, "GRENTER2")
	resp = ts.do(t, http.MethodPost, "/rentals", second, rentalRequest{
		Renter: "GRENTER2", Owner: "GOWNER", TotalDaysToRent: 2, Amount: 40,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Return, then pay the owner out.
	resp = ts.do(t, http.MethodPost, "/returns", "", returnCarRequest{Renter: "GRENTER", Owner: "GOWNER"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/payouts", owner, payoutRequest{Owner: "GOWNER", Amount: 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Admin withdraws the skimmed fee.
	resp = ts.do(t, http.MethodPost, "/admin/withdrawals", admin, withdrawRequest{Amount: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/contract/balance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &balanceBody)
	assert.Zero(t, balanceBody["balance"])
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.mintToken(t, "GADMIN")
	owner := ts.mintToken(t, "GOWNER")

	t.Run("MissingToken", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/cars", "", addCarRequest{Owner: "GOWNER", PricePerDay: 50})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("NonAdminToken", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/cars", owner, addCarRequest{Owner: "GOWNER", PricePerDay: 50})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UnknownCar", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/cars/GNOBODY/status", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("ValidationError", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/cars", admin, addCarRequest{Owner: "GOWNER2", PricePerDay: -1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("InsufficientPayout", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/cars", admin, addCarRequest{Owner: "GOWNER", PricePerDay: 50})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = ts.do(t, http.MethodPost, "/payouts", owner, payoutRequest{Owner: "GOWNER", Amount: 999})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.server.URL+"/rentals", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestReturnWithoutRental(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.mintToken(t, "GADMIN")

	resp := ts.do(t, http.MethodPost, "/cars", admin, addCarRequest{Owner: "GOWNER", PricePerDay: 50})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/returns", "", returnCarRequest{Renter: "GRENTER", Owner: "GOWNER"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
