package database

import (
	"strings"
	"testing"
)

// The statements run against Postgres at startup, where ADD CONSTRAINT has
// no IF NOT EXISTS form and CONCURRENTLY index builds are refused inside a
// transaction. Keep every statement clear of both.
func TestConstraintStatementsArePostgresCompatible(t *testing.T) {
	t.Parallel()

	if len(constraintStatements) == 0 {
		t.Fatal("no constraint statements defined")
	}
	for _, stmt := range constraintStatements {
		if strings.Contains(stmt, "ADD CONSTRAINT IF NOT EXISTS") {
			t.Errorf("statement uses ADD CONSTRAINT IF NOT EXISTS, which Postgres rejects:\n%s", stmt)
		}
		if strings.Contains(stmt, "CONCURRENTLY") {
			t.Errorf("statement uses CONCURRENTLY, which cannot run in a transaction:\n%s", stmt)
		}
	}
}

func TestConstraintStatementsGuardCounter(t *testing.T) {
	t.Parallel()

	for _, stmt := range constraintStatements {
		if strings.Contains(stmt, "chk_slot_buckets_non_negative") &&
			strings.Contains(stmt, "confirmed >= 0") {
			return
		}
	}
	t.Fatal("no statement enforces a non-negative confirmed count")
}
