package relationships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

const relationshipColumns = `id, sender_id, recipient_id, status, accepted_at, created_at, updated_at`

// querier is satisfied by both *sqlx.DB and *sqlx.Tx
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type repository struct {
	db *sqlx.DB // nil when bound to a transaction
	q  querier
}

// NewRepository creates new relationships repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, q: db}
}

func (r *repository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("relationships begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&repository{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("relationships commit: %w", err)
	}
	return nil
}

func (r *repository) LockPair(ctx context.Context, a, b uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, pairKey(a, b))
	if err != nil {
		return fmt.Errorf("relationships lock pair: %w", err)
	}
	return nil
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *repository) FindBetween(ctx context.Context, a, b uuid.UUID) (*Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		LIMIT 1
	`
	return r.getOne(ctx, query, a, b)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *repository) getOne(ctx context.Context, query string, args ...interface{}) (*Relationship, error) {
	var rel Relationship
	if err := r.q.GetContext(ctx, &rel, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("relationships get: %w", err)
	}
	return &rel, nil
}

func (r *repository) Create(ctx context.Context, rel *Relationship) error {
	query := `
		INSERT INTO relationships (id, sender_id, recipient_id, status, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		rel.ID,
		rel.SenderID,
		rel.RecipientID,
		rel.Status,
		rel.AcceptedAt,
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, rel *Relationship) error {
	query := `
		UPDATE relationships
		SET sender_id = $2, recipient_id = $3, status = $4, accepted_at = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		rel.ID,
		rel.SenderID,
		rel.RecipientID,
		rel.Status,
		rel.AcceptedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*Relationship, error) {
	query := `DELETE FROM relationships WHERE id = $1 RETURNING ` + relationshipColumns
	var rel Relationship
	if err := r.q.GetContext(ctx, &rel, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("relationships delete: %w", err)
	}
	return &rel, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Relationship, int, error) {
	where, args := buildListWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM relationships WHERE ` + where
	if err := r.q.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("relationships count: %w", err)
	}

	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE ` + where + ` ORDER BY updated_at DESC`
	argPos := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	items := []*Relationship{}
	if err := r.q.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("relationships list: %w", err)
	}
	return items, total, nil
}

func buildListWhere(filter ListFilter) (string, []interface{}) {
	var conds []string
	args := []interface{}{filter.UserID}

	switch filter.Direction {
	case DirectionOutgoing:
		conds = append(conds, `sender_id = $1`)
	case DirectionIncoming:
		conds = append(conds, `recipient_id = $1`)
	default:
		conds = append(conds, `(sender_id = $1 OR recipient_id = $1)`)
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf(`status = $%d`, len(args)))
	}

	return strings.Join(conds, ` AND `), args
}

// pairKey is identical for (a, b) and (b, a)
func pairKey(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + ":" + hi
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("relationships write: %w", err)
	}

	switch string(pqErr.Code) {
	case sqlStateUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicatePair, pqErr.Constraint)
	case sqlStateForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrUnknownUser, pqErr.Constraint)
	case sqlStateCheckViolation:
		if pqErr.Constraint == "relationships_no_self" {
			return ErrSelfReference
		}
	}
	return fmt.Errorf("relationships write: %w", err)
}
