package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/notify"
	"rentacar-escrow-backend/internal/statestore"
)

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Emit(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func seedState(t *testing.T, store *statestore.Store, contract, admin, withdrawable int64) {
	t.Helper()
	batch := statestore.NewBatch()
	batch.SetContractBalance(contract)
	batch.SetAdminBalance(admin)
	batch.PutCar("GOWNER", &domain.Car{
		PricePerDay:         50,
		Status:              domain.CarStatusRented,
		AvailableToWithdraw: withdrawable,
	})
	require.NoError(t, store.Commit(context.Background(), batch))
}

func TestConservationAudit(t *testing.T) {
	t.Run("HoldsOnConsistentState", func(t *testing.T) {
		store := statestore.New(statestore.NewMemoryBackend())
		notifier := &recordingNotifier{}
		seedState(t, store, 110, 10, 100)

		NewJobRunner(store, notifier).RunConservationAudit()
		assert.Empty(t, notifier.events)
	})

	t.Run("DetectsContractBelowAdminClaim", func(t *testing.T) {
		store := statestore.New(statestore.NewMemoryBackend())
		notifier := &recordingNotifier{}
		seedState(t, store, 5, 10, 0)

		NewJobRunner(store, notifier).RunConservationAudit()
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.TopicAuditViolation, notifier.events[0].Topic)
	})

	t.Run("DetectsContractBelowTotalClaims", func(t *testing.T) {
		store := statestore.New(statestore.NewMemoryBackend())
		notifier := &recordingNotifier{}
		seedState(t, store, 50, 10, 100)

		NewJobRunner(store, notifier).RunConservationAudit()
		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.TopicAuditViolation, notifier.events[0].Topic)
	})

	t.Run("EmptyStateHolds", func(t *testing.T) {
		store := statestore.New(statestore.NewMemoryBackend())
		notifier := &recordingNotifier{}

		NewJobRunner(store, notifier).RunConservationAudit()
		assert.Empty(t, notifier.events)
	})
}
