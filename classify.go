package pmsgate

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classify maps a raw store failure onto the error taxonomy.
//
// An *Error passes through unchanged. Any error reported by the server itself
// (a *pgconn.PgError, which is how a procedure signals a business-rule violation
// with RAISE EXCEPTION) becomes an ApplicationError carrying the server message.
// Everything else, including connectivity loss and cancelled contexts, becomes a
// TransportError. A call that yields no rows is not a failure and never reaches
// Classify.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ApplicationError(pgErr.Message, err)
	}

	return TransportError(err.Error(), err)
}
