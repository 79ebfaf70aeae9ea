package common

import (
	"context"
	"errors"
	"time"

	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const defaultTxTimeout = 5 * time.Second

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// Transaction runs fn in a database transaction bounded by the configured
// timeout. The context passed to fn carries the transaction, so repositories
// called with it join the transaction. If the transaction fails because of
// lock contention, it is retried once.
func Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := runTransaction(ctx, fn)
	if err == nil || !IsContention(err) {
		return err
	}

	xcontext.Logger(ctx).Warnf("Transaction contention, retrying: %v", err)
	err = runTransaction(ctx, fn)
	if err != nil && IsContention(err) {
		xcontext.Logger(ctx).Errorf("Transaction contention after retry: %v", err)
		return errorx.New(errorx.RetryableContention, "The resource is busy, please try again")
	}

	return err
}

func runTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := xcontext.Configs(ctx).Database.TxTimeout
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}

	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return xcontext.DB(ctx).WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(xcontext.WithDB(txCtx, tx))
	})
}

// IsContention reports whether err is a transient lock error which is safe to
// retry.
func IsContention(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlLockWaitTimeout || mysqlErr.Number == mysqlDeadlock
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// InternalError logs err and hides it behind errorx.Unknown. Lock contention
// is returned as is, so Transaction can still retry it.
func InternalError(ctx context.Context, err error, msg string) error {
	if IsContention(err) {
		xcontext.Logger(ctx).Warnf("%s: %v", msg, err)
		return err
	}

	xcontext.Logger(ctx).Errorf("%s: %v", msg, err)
	return errorx.Unknown
}
