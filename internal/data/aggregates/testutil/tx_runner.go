package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

// InjectedTxRunner is an aggregates.TxRunner whose commit can be made to
// fail after the body succeeded. With DB set the body runs in a real
// transaction, rolled back on any failure.
type InjectedTxRunner struct {
	DB         *gorm.DB
	FailCommit error

	mu            sync.Mutex
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	dbc := dbctx.Background(ctx)
	if r.DB != nil {
		tx := r.DB.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
		dbc.Tx = tx
	}

	err := fn(dbc)
	if err == nil {
		err = r.FailCommit
	}
	if err != nil {
		if dbc.Tx != nil {
			_ = dbc.Tx.Rollback().Error
		}
		r.count(&r.RollbackCalls)
		return err
	}
	if dbc.Tx != nil {
		if err := dbc.Tx.Commit().Error; err != nil {
			return err
		}
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
