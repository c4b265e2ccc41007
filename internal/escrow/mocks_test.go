package escrow

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/notify"
)

// fakeGate authorizes exactly one principal: whoever the test says is
// calling. Swap caller between steps to act as renter, owner, or admin.
type fakeGate struct {
	caller domain.Principal
}

func (g *fakeGate) Authorize(_ context.Context, principal domain.Principal) error {
	if g.caller != principal {
		return fmt.Errorf("%w: authenticated as %q, claimed %q", domain.ErrNotAuthorized, g.caller, principal)
	}
	return nil
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Transfer(ctx context.Context, asset string, from, to domain.Principal, amount int64) error {
	args := m.Called(ctx, asset, from, to, amount)
	return args.Error(0)
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Emit(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) lastTopic() string {
	if len(n.events) == 0 {
		return ""
	}
	return n.events[len(n.events)-1].Topic
}
