package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-escrow-backend/internal/domain"
)

func newMemoryStore() *Store {
	return New(NewMemoryBackend())
}

func TestStore_Scalars(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	t.Run("DefaultsBeforeInitialize", func(t *testing.T) {
		_, ok, err := store.Admin(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		fee, err := store.AdminFee(ctx)
		require.NoError(t, err)
		assert.Zero(t, fee)

		balance, err := store.ContractBalance(ctx)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		batch := NewBatch()
		batch.SetAdmin("GADMIN")
		batch.SetPaymentAsset("usdc")
		batch.SetAdminFee(25)
		batch.SetAdminBalance(50)
		batch.SetContractBalance(500)
		require.NoError(t, store.Commit(ctx, batch))

		admin, ok, err := store.Admin(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.Principal("GADMIN"), admin)

		asset, ok, err := store.PaymentAsset(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "usdc", asset)

		fee, err := store.AdminFee(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(25), fee)

		adminBalance, err := store.AdminBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(50), adminBalance)

		contractBalance, err := store.ContractBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(500), contractBalance)
	})
}

func TestStore_Cars(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	t.Run("MissingCar", func(t *testing.T) {
		_, err := store.Car(ctx, "GOWNER")
		assert.ErrorIs(t, err, domain.ErrCarNotFound)

		ok, err := store.HasCar(ctx, "GOWNER")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("PutGetDelete", func(t *testing.T) {
		batch := NewBatch()
		batch.PutCar("GOWNER", &domain.Car{PricePerDay: 50, Status: domain.CarStatusAvailable})
		require.NoError(t, store.Commit(ctx, batch))

		car, err := store.Car(ctx, "GOWNER")
		require.NoError(t, err)
		assert.Equal(t, int64(50), car.PricePerDay)
		assert.Equal(t, domain.CarStatusAvailable, car.Status)
		assert.Zero(t, car.AvailableToWithdraw)

		batch = NewBatch()
		batch.DeleteCar("GOWNER")
		require.NoError(t, store.Commit(ctx, batch))

		_, err = store.Car(ctx, "GOWNER")
		assert.ErrorIs(t, err, domain.ErrCarNotFound)
	})

	t.Run("ListAll", func(t *testing.T) {
		store := newMemoryStore()
		batch := NewBatch()
		batch.PutCar("GOWNER1", &domain.Car{PricePerDay: 10, Status: domain.CarStatusAvailable, AvailableToWithdraw: 100})
		batch.PutCar("GOWNER2", &domain.Car{PricePerDay: 20, Status: domain.CarStatusRented, AvailableToWithdraw: 200})
		// Rentals must not leak into the car listing.
		batch.PutRental("GRENTER", "GOWNER2", &domain.Rental{TotalDaysToRent: 3, Amount: 200})
		require.NoError(t, store.Commit(ctx, batch))

		cars, err := store.Cars(ctx)
		require.NoError(t, err)
		require.Len(t, cars, 2)
		assert.Equal(t, int64(100), cars["GOWNER1"].AvailableToWithdraw)
		assert.Equal(t, domain.CarStatusRented, cars["GOWNER2"].Status)
	})
}

func TestStore_Rentals(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	batch := NewBatch()
	batch.PutRental("GRENTER", "GOWNER", &domain.Rental{TotalDaysToRent: 5, Amount: 100})
	require.NoError(t, store.Commit(ctx, batch))

	t.Run("Get", func(t *testing.T) {
		rental, err := store.Rental(ctx, "GRENTER", "GOWNER")
		require.NoError(t, err)
		assert.Equal(t, int32(5), rental.TotalDaysToRent)
		assert.Equal(t, int64(100), rental.Amount)
	})

	t.Run("MissingRental", func(t *testing.T) {
		_, err := store.Rental(ctx, "GOTHER", "GOWNER")
		assert.ErrorIs(t, err, domain.ErrRentalNotFound)
	})

	t.Run("CarHasActiveRental", func(t *testing.T) {
		rented, err := store.CarHasActiveRental(ctx, "GOWNER")
		require.NoError(t, err)
		assert.True(t, rented)

		// The renter's own address must not match as a car key.
		rented, err = store.CarHasActiveRental(ctx, "GRENTER")
		require.NoError(t, err)
		assert.False(t, rented)
	})

	t.Run("Delete", func(t *testing.T) {
		batch := NewBatch()
		batch.DeleteRental("GRENTER", "GOWNER")
		require.NoError(t, store.Commit(ctx, batch))

		ok, err := store.HasRental(ctx, "GRENTER", "GOWNER")
		require.NoError(t, err)
		assert.False(t, ok)

		rented, err := store.CarHasActiveRental(ctx, "GOWNER")
		require.NoError(t, err)
		assert.False(t, rented)
	})
}

func TestBatch_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	batch := NewBatch()
	batch.SetContractBalance(100)
	batch.SetContractBalance(250)
	require.NoError(t, store.Commit(ctx, batch))

	balance, err := store.ContractBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}
