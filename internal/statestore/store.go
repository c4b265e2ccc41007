package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rentacar-escrow-backend/internal/domain"
)

// Backend is the raw durable mapping underneath the typed store. Apply must
// commit every mutation in the batch or none of them.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Apply(ctx context.Context, batch *Batch) error
}

// Store exposes the escrow key space as typed reads plus an atomic batch
// commit. Engine operations do all their reads and validation up front, stage
// writes into a Batch, and commit once; a failed operation commits nothing.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) get(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Admin returns the admin principal, or false if initialize has not run.
func (s *Store) Admin(ctx context.Context) (domain.Principal, bool, error) {
	var admin domain.Principal
	ok, err := s.get(ctx, keyAdmin, &admin)
	return admin, ok, err
}

// PaymentAsset returns the payment-asset reference recorded at initialize.
func (s *Store) PaymentAsset(ctx context.Context) (string, bool, error) {
	var asset string
	ok, err := s.get(ctx, keyPaymentAsset, &asset)
	return asset, ok, err
}

// AdminFee returns the per-rental fee, zero if never set.
func (s *Store) AdminFee(ctx context.Context) (int64, error) {
	var fee int64
	_, err := s.get(ctx, keyAdminFee, &fee)
	return fee, err
}

// AdminBalance returns accumulated fee revenue not yet withdrawn.
func (s *Store) AdminBalance(ctx context.Context) (int64, error) {
	var balance int64
	_, err := s.get(ctx, keyAdminBalance, &balance)
	return balance, err
}

// ContractBalance returns the total value currently custodied by the system.
func (s *Store) ContractBalance(ctx context.Context) (int64, error) {
	var balance int64
	_, err := s.get(ctx, keyContractBalance, &balance)
	return balance, err
}

// Car returns the registry record for owner, or ErrCarNotFound.
func (s *Store) Car(ctx context.Context, owner domain.Principal) (*domain.Car, error) {
	var car domain.Car
	ok, err := s.get(ctx, carKey(owner), &car)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	return &car, nil
}

func (s *Store) HasCar(ctx context.Context, owner domain.Principal) (bool, error) {
	_, ok, err := s.backend.Get(ctx, carKey(owner))
	return ok, err
}

// Rental returns the active rental for (renter, owner), or ErrRentalNotFound.
func (s *Store) Rental(ctx context.Context, renter, owner domain.Principal) (*domain.Rental, error) {
	var rental domain.Rental
	ok, err := s.get(ctx, rentalKey(renter, owner), &rental)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRentalNotFound
	}
	return &rental, nil
}

func (s *Store) HasRental(ctx context.Context, renter, owner domain.Principal) (bool, error) {
	_, ok, err := s.backend.Get(ctx, rentalKey(renter, owner))
	return ok, err
}

// CarHasActiveRental reports whether any rental record, under any renter,
// references owner's car. Used for the duplicate-rental guard and the
// remove-while-rented guard.
func (s *Store) CarHasActiveRental(ctx context.Context, owner domain.Principal) (bool, error) {
	entries, err := s.backend.List(ctx, rentalPrefix)
	if err != nil {
		return false, err
	}
	suffix := "/" + owner.String()
	for key := range entries {
		if strings.HasSuffix(key, suffix) {
			return true, nil
		}
	}
	return false, nil
}

// Cars returns every registry record keyed by owner. Used by the
// conservation audit to sum outstanding claims.
func (s *Store) Cars(ctx context.Context) (map[domain.Principal]domain.Car, error) {
	entries, err := s.backend.List(ctx, carPrefix)
	if err != nil {
		return nil, err
	}
	cars := make(map[domain.Principal]domain.Car, len(entries))
	for key, raw := range entries {
		var car domain.Car
		if err := json.Unmarshal(raw, &car); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		cars[domain.Principal(strings.TrimPrefix(key, carPrefix))] = car
	}
	return cars, nil
}

// Commit applies the staged batch atomically.
func (s *Store) Commit(ctx context.Context, batch *Batch) error {
	if batch.err != nil {
		return batch.err
	}
	return s.backend.Apply(ctx, batch)
}
