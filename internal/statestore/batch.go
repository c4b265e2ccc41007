package statestore

import (
	"encoding/json"
	"fmt"

	"rentacar-escrow-backend/internal/domain"
)

type mutation struct {
	key   string
	value []byte // nil means delete
}

// Batch is a staged set of writes for one engine operation. Mutations apply
// in insertion order; a later write to the same key wins.
type Batch struct {
	mutations []mutation
	err       error
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) set(key string, v any) {
	if b.err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", key, err)
		return
	}
	b.mutations = append(b.mutations, mutation{key: key, value: raw})
}

func (b *Batch) delete(key string) {
	if b.err != nil {
		return
	}
	b.mutations = append(b.mutations, mutation{key: key})
}

func (b *Batch) SetAdmin(admin domain.Principal)  { b.set(keyAdmin, admin) }
func (b *Batch) SetPaymentAsset(asset string)     { b.set(keyPaymentAsset, asset) }
func (b *Batch) SetAdminFee(fee int64)            { b.set(keyAdminFee, fee) }
func (b *Batch) SetAdminBalance(balance int64)    { b.set(keyAdminBalance, balance) }
func (b *Batch) SetContractBalance(balance int64) { b.set(keyContractBalance, balance) }

func (b *Batch) PutCar(owner domain.Principal, car *domain.Car) {
	b.set(carKey(owner), car)
}

func (b *Batch) DeleteCar(owner domain.Principal) {
	b.delete(carKey(owner))
}

func (b *Batch) PutRental(renter, owner domain.Principal, rental *domain.Rental) {
	b.set(rentalKey(renter, owner), rental)
}

func (b *Batch) DeleteRental(renter, owner domain.Principal) {
	b.delete(rentalKey(renter, owner))
}

// Len returns the number of staged mutations.
func (b *Batch) Len() int {
	return len(b.mutations)
}
