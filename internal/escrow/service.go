package escrow

import (
	"context"

	"rentacar-escrow-backend/internal/domain"
)

// Service is the public operation surface of the escrow engine. Every
// mutating operation authorizes its caller, validates against current state,
// moves funds where applicable, and commits all of its writes atomically;
// any failure leaves state untouched.
type Service interface {
	Initialize(ctx context.Context, admin domain.Principal, paymentAsset string) error

	AddCar(ctx context.Context, owner domain.Principal, pricePerDay int64) error
	RemoveCar(ctx context.Context, owner domain.Principal) error
	GetCarStatus(ctx context.Context, owner domain.Principal) (domain.CarStatus, error)
	GetOwnerBalance(ctx context.Context, owner domain.Principal) (int64, error)

	Rental(ctx context.Context, renter, owner domain.Principal, totalDaysToRent int32, amount int64) error
	ReturnCar(ctx context.Context, renter, owner domain.Principal) error

	PayoutOwner(ctx context.Context, owner domain.Principal, amount int64) error
	SetAdminFee(ctx context.Context, fee int64) error
	GetAdminFee(ctx context.Context) (int64, error)
	AdminWithdraw(ctx context.Context, amount int64) error
	GetContractBalance(ctx context.Context) (int64, error)
	GetAdminBalance(ctx context.Context) (int64, error)
}
