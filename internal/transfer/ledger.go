package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/logger"
)

// ErrTransferFailed wraps every failure from the asset ledger. The engine
// treats any transfer failure as a full abort of the enclosing operation.
var ErrTransferFailed = errors.New("asset transfer failed")

// Ledger is the external value-transfer collaborator: it moves amount of
// asset between two principals' custody, all or nothing.
type Ledger interface {
	Transfer(ctx context.Context, asset string, from, to domain.Principal, amount int64) error
}

type transferRequest struct {
	Asset  string `json:"asset"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// HTTPLedger talks to the asset-ledger service over REST. A 2xx response
// means the funds moved; anything else means they did not.
type HTTPLedger struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLedger(baseURL string, timeout time.Duration) *HTTPLedger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLedger{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLedger) Transfer(ctx context.Context, asset string, from, to domain.Principal, amount int64) error {
	payload, err := json.Marshal(transferRequest{
		Asset:  asset,
		From:   from.String(),
		To:     to.String(),
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrTransferFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/transfers", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("asset-ledger", "Transfer", "from", from.String(), "to", to.String(), "amount", amount)
	resp, err := l.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("asset-ledger", "Transfer", err)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: ledger returned status %d", ErrTransferFailed, resp.StatusCode)
		logger.ExternalServiceResult("asset-ledger", "Transfer", err)
		return err
	}
	logger.ExternalServiceResult("asset-ledger", "Transfer", nil)
	return nil
}
