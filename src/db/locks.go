package db

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/models"
)

// RunLock serializes automation runs per (user, rule type) with Postgres
// advisory locks, so two concurrent execute requests cannot double-apply
// actions against the same record snapshots.
type RunLock struct {
	Pool *pgxpool.Pool
}

// Advisory locks take a bigint key; hash the (userID, type) pair into one.
func lockKey(userID int64, ruleType models.RuleType) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "automation:%d:%s", userID, ruleType)
	return int64(h.Sum64())
}

// TryAcquire holds a dedicated connection for the lock's lifetime; session
// advisory locks are released when their connection goes away, so the
// release func must be called to return the connection to the pool.
func (l *RunLock) TryAcquire(ctx context.Context, userID int64, ruleType models.RuleType) (func(), bool, error) {
	conn, err := l.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for run lock: %w", err)
	}

	key := lockKey(userID, ruleType)
	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("pg_try_advisory_lock failed: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		// Unlock on a background context so a cancelled run still frees it.
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		conn.Release()
	}
	return release, true, nil
}
