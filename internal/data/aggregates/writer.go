package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/constella-backend/internal/domain/aggregates"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

// TxRunner opens the relational transaction an aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return gormTxRunner{db: db}
}

func (r gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "no database configured", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = HooksFunc(nil)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

func opName(op string) string {
	if op = strings.TrimSpace(op); op != "" {
		return op
	}
	return "aggregate.write"
}

// Writer runs relational-only aggregate writes in one transaction and
// reports each one to the hooks.
type Writer struct {
	deps BaseDeps
}

func NewWriter(deps BaseDeps) *Writer {
	return &Writer{deps: deps.withDefaults()}
}

// Write runs fn in a transaction and returns its error tagged with an
// aggregate code. A nil Writer runs fn without a transaction.
func (w *Writer) Write(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	if w == nil {
		return fn(dbctx.Background(ctx))
	}
	started := time.Now()
	op = opName(op)
	err := MapError(op, w.deps.Runner.InTx(ctx, fn))
	emit(w.deps.Hooks, op, err, started, false)
	return err
}
