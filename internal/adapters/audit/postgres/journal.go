// Package postgres persists source lifecycle audit events with retryable inserts.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/vshulcz/Countra/internal/misc"
	"github.com/vshulcz/Countra/internal/services/audit"
)

// Journal writes lifecycle events into the source_audit table.
type Journal struct {
	db *sql.DB
}

var _ audit.Observer = (*Journal)(nil)

var retryablePGCodes = map[string]struct{}{
	pgerrcode.ConnectionException:                           {},
	pgerrcode.ConnectionDoesNotExist:                        {},
	pgerrcode.ConnectionFailure:                             {},
	pgerrcode.SQLClientUnableToEstablishSQLConnection:       {},
	pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection: {},
	pgerrcode.TransactionResolutionUnknown:                  {},
	pgerrcode.ProtocolViolation:                             {},
	pgerrcode.SerializationFailure:                          {},
	pgerrcode.DeadlockDetected:                              {},
	pgerrcode.LockNotAvailable:                              {},
	pgerrcode.TooManyConnections:                            {},
	pgerrcode.AdminShutdown:                                 {},
	pgerrcode.CrashShutdown:                                 {},
	pgerrcode.CannotConnectNow:                              {},
	pgerrcode.QueryCanceled:                                 {},
}

// New returns a Postgres-backed audit journal.
func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Notify inserts one lifecycle event.
func (j *Journal) Notify(ctx context.Context, evt audit.Event) error {
	const q = `INSERT INTO source_audit (ts, source, action, detail) VALUES ($1, $2, $3, $4)`
	op := func() error {
		_, err := j.db.ExecContext(ctx, q, evt.Timestamp, evt.Source, string(evt.Action), evt.Detail)
		return err
	}
	return misc.Retry(ctx, misc.DefaultBackoff, isRetryablePG, op)
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	const q = `SELECT ts, source, action, detail FROM source_audit ORDER BY ts DESC, id DESC LIMIT $1`
	var out []audit.Event
	op := func() error {
		rows, err := j.db.QueryContext(ctx, q, limit)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		events := make([]audit.Event, 0, limit)
		for rows.Next() {
			var evt audit.Event
			var action string
			if err := rows.Scan(&evt.Timestamp, &evt.Source, &action, &evt.Detail); err != nil {
				return err
			}
			evt.Action = audit.Action(action)
			events = append(events, evt)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		out = events
		return nil
	}
	if err := misc.Retry(ctx, misc.DefaultBackoff, isRetryablePG, op); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping verifies the database connection using a short-lived context.
func (j *Journal) Ping(ctx context.Context) error {
	if j.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	op := func() error {
		return j.db.PingContext(ctx)
	}
	return misc.Retry(ctx, misc.DefaultBackoff, isRetryablePG, op)
}

// IsRetryable reports whether the error should trigger a retry according to Postgres semantics.
func IsRetryable(err error) bool {
	return isRetryablePG(err)
}

func isRetryablePG(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		return isRetryablePGCode(string(pqe.Code))
	}
	return false
}

func isRetryablePGCode(code string) bool {
	if _, ok := retryablePGCodes[code]; ok {
		return true
	}
	if strings.HasPrefix(code, "08") {
		return true
	}
	if strings.HasPrefix(code, "40") {
		return true
	}
	return false
}
