package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func TestNewRedisWithoutURL(t *testing.T) {
	client, err := NewRedis("")
	if err != nil || client != nil {
		t.Fatalf("expected nil client and no error, got %v %v", client, err)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not a url"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestHealthCheckerReportsDownPostgres(t *testing.T) {
	// sqlx.Open does not dial; the ping inside Check does
	db, err := sqlx.Open("postgres", "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	status, healthy := NewHealthChecker(db, nil).Check(context.Background())
	if healthy {
		t.Fatal("expected unhealthy")
	}
	if status["postgres"] != "down" || status["redis"] != "disabled" {
		t.Fatalf("unexpected status %v", status)
	}
}
