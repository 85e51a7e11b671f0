package relationships

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique", err: &pq.Error{Code: sqlStateUniqueViolation, Constraint: "relationships_pair_key"}, want: ErrDuplicatePair},
		{name: "foreign key", err: &pq.Error{Code: sqlStateForeignKeyViolation, Constraint: "relationships_sender_id_fkey"}, want: ErrUnknownUser},
		{name: "self reference", err: &pq.Error{Code: sqlStateCheckViolation, Constraint: "relationships_no_self"}, want: ErrSelfReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapWriteError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	other := &pq.Error{Code: sqlStateCheckViolation, Constraint: "relationships_status_check"}
	got := mapWriteError(other)
	for _, sentinel := range []error{ErrDuplicatePair, ErrUnknownUser, ErrSelfReference} {
		if errors.Is(got, sentinel) {
			t.Fatalf("unexpected mapping to %v", sentinel)
		}
	}
	var pqErr *pq.Error
	if !errors.As(got, &pqErr) {
		t.Fatal("expected the driver error to stay wrapped")
	}
}

func TestPairKeyIsSymmetric(t *testing.T) {
	if pairKey(userA, userB) != pairKey(userB, userA) {
		t.Fatal("expected the same key for both orders")
	}
	if pairKey(userA, userB) == pairKey(userA, userC) {
		t.Fatal("expected different pairs to get different keys")
	}
}

func TestBuildListWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   ListFilter
		want     string
		wantArgs int
	}{
		{name: "any", filter: ListFilter{UserID: userA}, want: `(sender_id = $1 OR recipient_id = $1)`, wantArgs: 1},
		{name: "outgoing", filter: ListFilter{UserID: userA, Direction: DirectionOutgoing}, want: `sender_id = $1`, wantArgs: 1},
		{name: "incoming with status", filter: ListFilter{UserID: userA, Direction: DirectionIncoming, Status: StatusPending}, want: `recipient_id = $1 AND status = $2`, wantArgs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := buildListWhere(tt.filter)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("expected %d args, got %d", tt.wantArgs, len(args))
			}
		})
	}
}

// setupTestDB connects to TEST_DATABASE_URL with migrations applied
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	handle := "rel_" + id.String()[:8]
	_, err := db.Exec(`INSERT INTO users (id, email, username, password_hash) VALUES ($1, $2, $3, 'x')`,
		id, handle+"@example.com", handle)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, id) })
	return id
}

func TestRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	a, b := insertUser(t, db), insertUser(t, db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rel := newRelationship(a, b, StatusPending, now)
	if err := repo.Create(ctx, rel); err != nil {
		t.Fatalf("create: %v", err)
	}

	reverse := newRelationship(b, a, StatusPending, now)
	if err := repo.Create(ctx, reverse); !errors.Is(err, ErrDuplicatePair) {
		t.Fatalf("expected ErrDuplicatePair for the reversed pair, got %v", err)
	}

	if err := repo.Create(ctx, newRelationship(a, a, StatusPending, now)); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected ErrSelfReference, got %v", err)
	}

	found, err := repo.FindBetween(ctx, b, a)
	if err != nil || found == nil || found.ID != rel.ID {
		t.Fatalf("expected to find relationship from either side, got %v %v", found, err)
	}

	err = repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.LockPair(ctx, a, b); err != nil {
			return err
		}
		locked, err := tx.LockByID(ctx, rel.ID)
		if err != nil {
			return err
		}
		locked.setStatus(StatusAccepted, now.Add(time.Second))
		return tx.Update(ctx, locked)
	})
	if err != nil {
		t.Fatalf("tx update: %v", err)
	}

	items, total, err := repo.List(ctx, ListFilter{UserID: b, Status: StatusAccepted, Direction: DirectionIncoming, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || !items[0].AcceptedAt.Valid {
		t.Fatalf("expected one accepted row, got %d %+v", total, items)
	}

	rollback := errors.New("rollback")
	err = repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.Delete(ctx, rel.ID); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	if still, _ := repo.FindByID(ctx, rel.ID); still == nil {
		t.Fatal("expected rolled back delete to keep the row")
	}

	deleted, err := repo.Delete(ctx, rel.ID)
	if err != nil || deleted.Status != StatusAccepted {
		t.Fatalf("expected deleted row to be returned, got %v %v", deleted, err)
	}
	if _, err := repo.Delete(ctx, rel.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on second delete, got %v", err)
	}
	if err := repo.Update(ctx, rel); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on update of a deleted row, got %v", err)
	}
}
