package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/escrow"
	"rentacar-escrow-backend/internal/security"
)

// Handler serves the escrow operation surface over REST.
type Handler struct {
	svc      escrow.Service
	tokens   security.TokenManager
	operator *security.OperatorCredential
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type mintTokenRequest struct {
	Principal string `json:"principal"`
	Secret    string `json:"secret"`
}

type mintTokenResponse struct {
	Token string `json:"token"`
}

// MintToken issues a session token for a principal that presents the
// operator secret. The token is the credential the gate later checks on
// every mutating operation.
func (h *Handler) MintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	principal := domain.Principal(req.Principal)
	if !principal.Valid() {
		writeError(w, fmt.Errorf("%w: %q", domain.ErrInvalidPrincipal, req.Principal))
		return
	}
	if err := h.operator.Verify(req.Secret); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	token, err := h.tokens.Issue(principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mintTokenResponse{Token: token})
}

type addCarRequest struct {
	Owner       string `json:"owner"`
	PricePerDay int64  `json:"price_per_day"`
}

func (h *Handler) AddCar(w http.ResponseWriter, r *http.Request) {
	var req addCarRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.AddCar(r.Context(), domain.Principal(req.Owner), req.PricePerDay); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (h *Handler) RemoveCar(w http.ResponseWriter, r *http.Request) {
	owner := domain.Principal(mux.Vars(r)["owner"])
	if err := h.svc.RemoveCar(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetCarStatus(w http.ResponseWriter, r *http.Request) {
	owner := domain.Principal(mux.Vars(r)["owner"])
	status, err := h.svc.GetCarStatus(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *Handler) GetOwnerBalance(w http.ResponseWriter, r *http.Request) {
	owner := domain.Principal(mux.Vars(r)["owner"])
	balance, err := h.svc.GetOwnerBalance(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"available_to_withdraw": balance})
}

type rentalRequest struct {
	Renter          string `json:"renter"`
	Owner           string `json:"owner"`
	TotalDaysToRent int32  `json:"total_days_to_rent"`
	Amount          int64  `json:"amount"`
}

func (h *Handler) Rental(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err := h.svc.Rental(r.Context(), domain.Principal(req.Renter), domain.Principal(req.Owner), req.TotalDaysToRent, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

type returnCarRequest struct {
	Renter string `json:"renter"`
	Owner  string `json:"owner"`
}

func (h *Handler) ReturnCar(w http.ResponseWriter, r *http.Request) {
	var req returnCarRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.ReturnCar(r.Context(), domain.Principal(req.Renter), domain.Principal(req.Owner)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type payoutRequest struct {
	Owner  string `json:"owner"`
	Amount int64  `json:"amount"`
}

func (h *Handler) PayoutOwner(w http.ResponseWriter, r *http.Request) {
	var req payoutRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.PayoutOwner(r.Context(), domain.Principal(req.Owner), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type setFeeRequest struct {
	Fee int64 `json:"fee"`
}

func (h *Handler) SetAdminFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.SetAdminFee(r.Context(), req.Fee); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) GetAdminFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.svc.GetAdminFee(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"fee": fee})
}

type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) AdminWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.AdminWithdraw(r.Context(), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) GetAdminBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetAdminBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handler) GetContractBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetContractBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}
