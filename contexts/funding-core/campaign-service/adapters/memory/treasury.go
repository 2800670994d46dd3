package memory

import (
	"context"
	"errors"
	"sync"

	"fundry/contexts/funding-core/campaign-service/ports"
)

// Treasury is an in-memory value ledger. Disburse applies a batch
// all-or-nothing, mirroring the substrate's atomic transfer semantics.
type Treasury struct {
	mu sync.Mutex

	balances map[string]int64
	failures map[string]error
	failAll  error
}

func NewTreasury() *Treasury {
	return &Treasury{
		balances: make(map[string]int64),
		failures: make(map[string]error),
	}
}

func (t *Treasury) Disburse(_ context.Context, _ int64, transfers []ports.Transfer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failAll != nil {
		return t.failAll
	}
	for _, transfer := range transfers {
		if transfer.Amount < 0 {
			return errors.New("negative transfer amount")
		}
		if err, ok := t.failures[transfer.To]; ok {
			return err
		}
	}
	for _, transfer := range transfers {
		t.balances[transfer.To] += transfer.Amount
	}
	return nil
}

func (t *Treasury) Balance(account string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

// FailRecipient makes any batch touching the recipient fail, for transfer
// rollback tests. A nil error clears the injection.
func (t *Treasury) FailRecipient(account string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.failures, account)
		return
	}
	t.failures[account] = err
}

// FailAll rejects every disbursement until cleared with nil.
func (t *Treasury) FailAll(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failAll = err
}
