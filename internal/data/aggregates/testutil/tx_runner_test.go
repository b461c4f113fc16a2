package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

func TestInjectedTxRunner(t *testing.T) {
	bodyErr := errors.New("body failed")
	commitErr := errors.New("commit lost")
	cases := []struct {
		name         string
		failCommit   error
		body         error
		wantErr      error
		wantCommit   int
		wantRollback int
	}{
		{name: "commit", wantCommit: 1},
		{name: "body error", body: bodyErr, wantErr: bodyErr, wantRollback: 1},
		{name: "commit fault", failCommit: commitErr, wantErr: commitErr, wantRollback: 1},
		{name: "body error wins", failCommit: commitErr, body: bodyErr, wantErr: bodyErr, wantRollback: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &InjectedTxRunner{FailCommit: tc.failCommit}
			called := false
			err := r.InTx(context.Background(), func(dbctx.Context) error {
				called = true
				return tc.body
			})
			if !called {
				t.Fatalf("body did not run")
			}
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Fatalf("InTx: want=%v got=%v", tc.wantErr, err)
			}
			if r.CommitCalls != tc.wantCommit || r.RollbackCalls != tc.wantRollback {
				t.Fatalf("calls: commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
			}
		})
	}
}
