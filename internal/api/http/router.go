package http

import (
	"github.com/gorilla/mux"

	"rentacar-escrow-backend/internal/escrow"
	"rentacar-escrow-backend/internal/security"
)

// RegisterRoutes mounts the escrow API on the router. Every route passes
// through the bearer-token middleware; authorization itself happens inside
// the engine, per claimed principal, not per route.
func RegisterRoutes(router *mux.Router, svc escrow.Service, tokens security.TokenManager, operator *security.OperatorCredential) {
	h := &Handler{svc: svc, tokens: tokens, operator: operator}

	router.Use(BearerTokenMiddleware)

	router.HandleFunc("/auth/token", h.MintToken).Methods("POST")

	router.HandleFunc("/cars", h.AddCar).Methods("POST")
	router.HandleFunc("/cars/{owner}", h.RemoveCar).Methods("DELETE")
	router.HandleFunc("/cars/{owner}/status", h.GetCarStatus).Methods("GET")
	router.HandleFunc("/cars/{owner}/balance", h.GetOwnerBalance).Methods("GET")

	router.HandleFunc("/rentals", h.Rental).Methods("POST")
	router.HandleFunc("/returns", h.ReturnCar).Methods("POST")

	router.HandleFunc("/payouts", h.PayoutOwner).Methods("POST")

	router.HandleFunc("/admin/fee", h.SetAdminFee).Methods("PUT")
	router.HandleFunc("/admin/fee", h.GetAdminFee).Methods("GET")
	router.HandleFunc("/admin/withdrawals", h.AdminWithdraw).Methods("POST")
	router.HandleFunc("/admin/balance", h.GetAdminBalance).Methods("GET")
	router.HandleFunc("/contract/balance", h.GetContractBalance).Methods("GET")
}
