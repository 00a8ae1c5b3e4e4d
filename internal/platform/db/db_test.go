package db

import (
	"context"
	"testing"
)

func TestRebind(t *testing.T) {
	q := "INSERT INTO points (id, lon) VALUES (?, ?)"

	if got := Rebind(DriverPostgres, q); got != "INSERT INTO points (id, lon) VALUES ($1, $2)" {
		t.Fatalf("unexpected postgres query: %s", got)
	}
	if got := Rebind(DriverSQLite, q); got != q {
		t.Fatalf("sqlite query should be unchanged: %s", got)
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
