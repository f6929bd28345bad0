package db

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies a failed query or transaction.
type ErrorKind string

const (
	KindDuplicateEntry   ErrorKind = "DuplicateEntry"
	KindMissingReference ErrorKind = "MissingReference"
	KindUndefinedTable   ErrorKind = "UndefinedTable"
	KindPoolExhausted    ErrorKind = "PoolExhausted"
	KindPoolClosed       ErrorKind = "PoolClosed"
	KindQueryFailed      ErrorKind = "QueryFailed"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrDuplicateEntry   = &Error{Kind: KindDuplicateEntry}
	ErrMissingReference = &Error{Kind: KindMissingReference}
	ErrUndefinedTable   = &Error{Kind: KindUndefinedTable}
	ErrPoolExhausted    = &Error{Kind: KindPoolExhausted}
	ErrPoolClosed       = &Error{Kind: KindPoolClosed}
	ErrQueryFailed      = &Error{Kind: KindQueryFailed}
)

// Error is the only error shape the executor and transaction coordinator
// return for database failures. The driver error stays reachable through
// Unwrap for diagnostics.
type Error struct {
	Kind ErrorKind
	// Code is the SQLSTATE reported by the server, if any.
	Code string
	// Constraint names the violated constraint for DuplicateEntry and
	// MissingReference.
	Constraint string
	// Table is the offending relation when the server reports one.
	Table   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Code != "" {
		return fmt.Sprintf("%s (SQLSTATE %s)", e.Kind, e.Code)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindForCode maps a SQLSTATE code to an ErrorKind.
func KindForCode(code string) ErrorKind {
	switch code {
	case pgerrcode.UniqueViolation:
		return KindDuplicateEntry
	case pgerrcode.ForeignKeyViolation:
		return KindMissingReference
	case pgerrcode.UndefinedTable:
		return KindUndefinedTable
	default:
		return KindQueryFailed
	}
}

var relationPattern = regexp.MustCompile(`relation "([^"]+)" does not exist`)

// Classify lifts err into an *Error. Errors that are already classified are
// returned unchanged; anything the server did not report becomes QueryFailed.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &Error{Kind: KindQueryFailed, Message: err.Error(), Err: err}
	}

	out := &Error{
		Kind:       KindForCode(pgErr.Code),
		Code:       pgErr.Code,
		Constraint: pgErr.ConstraintName,
		Table:      pgErr.TableName,
		Message:    pgErr.Message,
		Err:        err,
	}
	if out.Kind == KindUndefinedTable && out.Table == "" {
		if m := relationPattern.FindStringSubmatch(pgErr.Message); m != nil {
			out.Table = m[1]
		}
	}
	return out
}

// KindOf reports the kind of a classified error, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}
	return ""
}

// serverReported reports whether err came back from the server as an error
// response. Such failures leave the connection usable; anything else may
// have broken it.
func serverReported(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

func poolError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
