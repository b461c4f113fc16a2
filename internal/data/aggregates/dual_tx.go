package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/constella-backend/internal/data/graph"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

// DualTxRunner runs a unit of work against the relational store and the
// graph store together. There is no shared coordinator: the graph commits
// first, inside the relational transaction, and the relational transaction
// commits last. If the relational commit then fails the graph projection is
// left behind; that case is logged and counted, not repaired.
type DualTxRunner struct {
	deps  BaseDeps
	graph graph.Store
}

func NewDualTxRunner(deps BaseDeps, store graph.Store) *DualTxRunner {
	return &DualTxRunner{deps: deps.withDefaults(), graph: store}
}

// InDualTx returns nil or an error wrapping knowledge.ErrSagaAborted and the
// aggregate-coded cause.
func (r *DualTxRunner) InDualTx(ctx context.Context, op string, fn func(dbc dbctx.Context, gtx graph.Tx) error) error {
	started := time.Now()
	op = opName(op)
	deps := r.deps

	abort := func(err error, ghost bool) error {
		mapped := MapError(op, err)
		emit(deps.Hooks, op, mapped, started, ghost)
		if mapped == nil {
			return nil
		}
		return fmt.Errorf("%w: %w", domainknowledge.ErrSagaAborted, mapped)
	}

	if r.graph == nil {
		return abort(fmt.Errorf("graph store not configured"), false)
	}
	gtx, err := r.graph.Begin(ctx)
	if err != nil {
		return abort(fmt.Errorf("graph begin: %w", err), false)
	}

	graphCommitted := false
	defer func() {
		if !graphCommitted {
			_ = gtx.Rollback(ctx)
		}
	}()

	err = deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := fn(dbc, gtx); err != nil {
			return err
		}
		if err := gtx.Commit(ctx); err != nil {
			return fmt.Errorf("graph commit: %w", err)
		}
		graphCommitted = true
		return nil
	})

	ghost := err != nil && graphCommitted
	if ghost {
		deps.Log.Warn("graph committed but relational commit failed; projection left without rows",
			"op", op,
			"error", err,
		)
	}
	return abort(err, ghost)
}
