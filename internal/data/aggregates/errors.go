package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/graph"
	domainagg "github.com/yungbote/constella-backend/internal/domain/aggregates"
)

var (
	ErrValidation = errors.New("aggregate validation")
	ErrConflict   = errors.New("aggregate conflict")
	ErrRetryable  = errors.New("aggregate retryable")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// RetryableError marks msg as a failure the caller may repeat unchanged.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// errorRule reports the code for err, or false to fall through.
type errorRule func(err error) (domainagg.ErrorCode, bool)

// errorRules run in order; the first match wins. Sentinels beat driver
// codes, and driver codes beat message sniffing.
var errorRules = []errorRule{
	sentinel(ErrValidation, domainagg.CodeValidation),
	sentinel(ErrConflict, domainagg.CodeConflict),
	sentinel(ErrRetryable, domainagg.CodeRetryable),
	sentinel(gorm.ErrRecordNotFound, domainagg.CodeNotFound),
	sentinel(gorm.ErrDuplicatedKey, domainagg.CodeConflict),
	sentinel(context.Canceled, domainagg.CodeRetryable),
	sentinel(context.DeadlineExceeded, domainagg.CodeRetryable),
	sentinel(graph.ErrTxDone, domainagg.CodeInternal),
	postgresCode,
	neo4jRetryable,
	messageContains(domainagg.CodeConflict, "duplicate key", "already exists", "unique constraint failed"),
	messageContains(domainagg.CodeRetryable, "deadlock", "serialization", "timeout", "database is locked", "temporar"),
}

var postgresCodes = map[string]domainagg.ErrorCode{
	"23505": domainagg.CodeConflict,           // unique_violation
	"23503": domainagg.CodePreconditionFailed, // foreign_key_violation
	"40001": domainagg.CodeRetryable,          // serialization_failure
	"40P01": domainagg.CodeRetryable,          // deadlock_detected
	"55P03": domainagg.CodeRetryable,          // lock_not_available
}

func sentinel(target error, code domainagg.ErrorCode) errorRule {
	return func(err error) (domainagg.ErrorCode, bool) {
		return code, errors.Is(err, target)
	}
}

func postgresCode(err error) (domainagg.ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	code, ok := postgresCodes[strings.TrimSpace(pgErr.Code)]
	return code, ok
}

func neo4jRetryable(err error) (domainagg.ErrorCode, bool) {
	return domainagg.CodeRetryable, neo4j.IsRetryable(err)
}

func messageContains(code domainagg.ErrorCode, fragments ...string) errorRule {
	return func(err error) (domainagg.ErrorCode, bool) {
		msg := strings.ToLower(err.Error())
		for _, f := range fragments {
			if strings.Contains(msg, f) {
				return code, true
			}
		}
		return "", false
	}
}

// MapError tags err with an aggregate code under op. Errors that already
// carry a code are returned unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domainagg.CodeOf(err) != "" {
		return err
	}
	for _, rule := range errorRules {
		if code, ok := rule(err); ok {
			return domainagg.Wrap(code, op, err)
		}
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}
