package escrow

import (
	"context"
	"fmt"
	"strconv"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/notify"
	"rentacar-escrow-backend/internal/security"
	"rentacar-escrow-backend/internal/statestore"
	"rentacar-escrow-backend/internal/transfer"
)

// engine is the single concrete implementation of Service.
//
// Every operation follows the same shape: authorize, read, validate, compute
// the post-state with checked arithmetic, call the asset ledger if funds
// move, commit the staged batch, emit. All failure paths run before the
// commit, and the arithmetic runs before the transfer, so a failed operation
// never leaves funds moved against unrecorded state.
type engine struct {
	store         *statestore.Store
	gate          security.Gate
	ledger        transfer.Ledger
	notifier      notify.Notifier
	escrowAccount domain.Principal
}

func NewService(
	store *statestore.Store,
	gate security.Gate,
	ledger transfer.Ledger,
	notifier notify.Notifier,
	escrowAccount domain.Principal,
) Service {
	return &engine{
		store:         store,
		gate:          gate,
		ledger:        ledger,
		notifier:      notifier,
		escrowAccount: escrowAccount,
	}
}

// requireAdmin resolves the configured admin and authorizes the caller as it.
func (e *engine) requireAdmin(ctx context.Context) (domain.Principal, error) {
	admin, ok, err := e.store.Admin(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNotInitialized
	}
	if err := e.gate.Authorize(ctx, admin); err != nil {
		return "", err
	}
	return admin, nil
}

func (e *engine) paymentAsset(ctx context.Context) (string, error) {
	asset, ok, err := e.store.PaymentAsset(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNotInitialized
	}
	return asset, nil
}

func (e *engine) Initialize(ctx context.Context, admin domain.Principal, paymentAsset string) error {
	if !admin.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPrincipal, admin)
	}
	if paymentAsset == "" {
		return fmt.Errorf("payment asset reference is required")
	}
	if _, ok, err := e.store.Admin(ctx); err != nil {
		return err
	} else if ok {
		return domain.ErrAlreadyInitialized
	}

	batch := statestore.NewBatch()
	batch.SetAdmin(admin)
	batch.SetPaymentAsset(paymentAsset)
	return e.store.Commit(ctx, batch)
}

func (e *engine) AddCar(ctx context.Context, owner domain.Principal, pricePerDay int64) error {
	if _, err := e.requireAdmin(ctx); err != nil {
		return err
	}
	if !owner.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPrincipal, owner)
	}
	if pricePerDay <= 0 {
		return domain.ErrAmountMustBePositive
	}
	if ok, err := e.store.HasCar(ctx, owner); err != nil {
		return err
	} else if ok {
		return domain.ErrCarAlreadyExists
	}

	batch := statestore.NewBatch()
	batch.PutCar(owner, &domain.Car{
		PricePerDay: pricePerDay,
		Status:      domain.CarStatusAvailable,
	})
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicCarAdded, map[string]string{
		"owner":         owner.String(),
		"price_per_day": strconv.FormatInt(pricePerDay, 10),
	}))
	return nil
}

func (e *engine) RemoveCar(ctx context.Context, owner domain.Principal) error {
	if _, err := e.requireAdmin(ctx); err != nil {
		return err
	}
	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return err
	}
	// Deleting a rented car would strand the renter's active rental while
	// the contract still carries its funds.
	if car.Status == domain.CarStatusRented {
		return domain.ErrCarAlreadyRented
	}
	if rented, err := e.store.CarHasActiveRental(ctx, owner); err != nil {
		return err
	} else if rented {
		return domain.ErrCarAlreadyRented
	}

	batch := statestore.NewBatch()
	batch.DeleteCar(owner)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicCarRemoved, map[string]string{
		"owner": owner.String(),
	}))
	return nil
}

func (e *engine) GetCarStatus(ctx context.Context, owner domain.Principal) (domain.CarStatus, error) {
	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return "", err
	}
	return car.Status, nil
}

func (e *engine) GetOwnerBalance(ctx context.Context, owner domain.Principal) (int64, error) {
	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return 0, err
	}
	return car.AvailableToWithdraw, nil
}

func (e *engine) Rental(ctx context.Context, renter, owner domain.Principal, totalDaysToRent int32, amount int64) error {
	if err := e.gate.Authorize(ctx, renter); err != nil {
		return err
	}
	if amount <= 0 {
		return domain.ErrAmountMustBePositive
	}
	if totalDaysToRent <= 0 {
		return domain.ErrRentalDurationZero
	}
	if renter == owner {
		return domain.ErrSelfRentalNotAllowed
	}

	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return err
	}
	if car.Status != domain.CarStatusAvailable {
		return domain.ErrCarAlreadyRented
	}
	if rented, err := e.store.CarHasActiveRental(ctx, owner); err != nil {
		return err
	} else if rented {
		return domain.ErrCarAlreadyRented
	}

	asset, err := e.paymentAsset(ctx)
	if err != nil {
		return err
	}
	fee, err := e.store.AdminFee(ctx)
	if err != nil {
		return err
	}
	contractBalance, err := e.store.ContractBalance(ctx)
	if err != nil {
		return err
	}
	adminBalance, err := e.store.AdminBalance(ctx)
	if err != nil {
		return err
	}

	// Full post-state is computed before the transfer call: an arithmetic
	// failure must not happen after funds have moved.
	toTransfer, err := domain.CheckedAdd(amount, fee)
	if err != nil {
		return err
	}
	newWithdrawable, err := domain.CheckedAdd(car.AvailableToWithdraw, amount)
	if err != nil {
		return err
	}
	newContractBalance, err := domain.CheckedAdd(contractBalance, toTransfer)
	if err != nil {
		return err
	}
	newAdminBalance, err := domain.CheckedAdd(adminBalance, fee)
	if err != nil {
		return err
	}

	if err := e.ledger.Transfer(ctx, asset, renter, e.escrowAccount, toTransfer); err != nil {
		return err
	}

	car.Status = domain.CarStatusRented
	car.AvailableToWithdraw = newWithdrawable

	batch := statestore.NewBatch()
	batch.PutCar(owner, car)
	batch.PutRental(renter, owner, &domain.Rental{
		TotalDaysToRent: totalDaysToRent,
		Amount:          amount,
	})
	batch.SetContractBalance(newContractBalance)
	batch.SetAdminBalance(newAdminBalance)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicRented, map[string]string{
		"renter": renter.String(),
		"owner":  owner.String(),
		"days":   strconv.FormatInt(int64(totalDaysToRent), 10),
		"amount": strconv.FormatInt(amount, 10),
	}))
	return nil
}

func (e *engine) ReturnCar(ctx context.Context, renter, owner domain.Principal) error {
	if ok, err := e.store.HasRental(ctx, renter, owner); err != nil {
		return err
	} else if !ok {
		return domain.ErrRentalNotFound
	}
	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return err
	}

	// Settlement happened at rental time; returning only releases the car.
	car.Status = domain.CarStatusAvailable

	batch := statestore.NewBatch()
	batch.PutCar(owner, car)
	batch.DeleteRental(renter, owner)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicCarReturned, map[string]string{
		"renter": renter.String(),
		"owner":  owner.String(),
	}))
	return nil
}

func (e *engine) PayoutOwner(ctx context.Context, owner domain.Principal, amount int64) error {
	if err := e.gate.Authorize(ctx, owner); err != nil {
		return err
	}
	if amount <= 0 {
		return domain.ErrAmountMustBePositive
	}

	car, err := e.store.Car(ctx, owner)
	if err != nil {
		return err
	}
	if car.AvailableToWithdraw < amount {
		return domain.ErrBalanceNotAvailable
	}
	contractBalance, err := e.store.ContractBalance(ctx)
	if err != nil {
		return err
	}
	if amount > contractBalance {
		return domain.ErrBalanceNotAvailable
	}
	asset, err := e.paymentAsset(ctx)
	if err != nil {
		return err
	}

	newWithdrawable, err := domain.CheckedSub(car.AvailableToWithdraw, amount)
	if err != nil {
		return err
	}
	newContractBalance, err := domain.CheckedSub(contractBalance, amount)
	if err != nil {
		return err
	}

	if err := e.ledger.Transfer(ctx, asset, e.escrowAccount, owner, amount); err != nil {
		return err
	}

	car.AvailableToWithdraw = newWithdrawable

	batch := statestore.NewBatch()
	batch.PutCar(owner, car)
	batch.SetContractBalance(newContractBalance)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicPayoutOwner, map[string]string{
		"owner":  owner.String(),
		"amount": strconv.FormatInt(amount, 10),
	}))
	return nil
}

func (e *engine) SetAdminFee(ctx context.Context, fee int64) error {
	admin, err := e.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if fee < 0 {
		return domain.ErrAmountMustBePositive
	}

	batch := statestore.NewBatch()
	batch.SetAdminFee(fee)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicAdminFeeSet, map[string]string{
		"admin": admin.String(),
		"fee":   strconv.FormatInt(fee, 10),
	}))
	return nil
}

func (e *engine) GetAdminFee(ctx context.Context) (int64, error) {
	return e.store.AdminFee(ctx)
}

func (e *engine) AdminWithdraw(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return domain.ErrAmountMustBePositive
	}
	admin, err := e.requireAdmin(ctx)
	if err != nil {
		return err
	}

	adminBalance, err := e.store.AdminBalance(ctx)
	if err != nil {
		return err
	}
	if adminBalance < amount {
		return domain.ErrInsufficientBalance
	}
	contractBalance, err := e.store.ContractBalance(ctx)
	if err != nil {
		return err
	}
	asset, err := e.paymentAsset(ctx)
	if err != nil {
		return err
	}

	newAdminBalance, err := domain.CheckedSub(adminBalance, amount)
	if err != nil {
		return err
	}
	newContractBalance, err := domain.CheckedSub(contractBalance, amount)
	if err != nil {
		return err
	}

	if err := e.ledger.Transfer(ctx, asset, e.escrowAccount, admin, amount); err != nil {
		return err
	}

	batch := statestore.NewBatch()
	batch.SetAdminBalance(newAdminBalance)
	batch.SetContractBalance(newContractBalance)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}

	e.notifier.Emit(ctx, notify.NewEvent(notify.TopicAdminWithdraw, map[string]string{
		"admin":  admin.String(),
		"amount": strconv.FormatInt(amount, 10),
	}))
	return nil
}

func (e *engine) GetContractBalance(ctx context.Context) (int64, error) {
	return e.store.ContractBalance(ctx)
}

func (e *engine) GetAdminBalance(ctx context.Context) (int64, error) {
	return e.store.AdminBalance(ctx)
}
