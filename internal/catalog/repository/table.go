package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// table describes how one entity maps onto its table. columns excludes id,
// and values must return one argument per column in the same order.
type table[M any] struct {
	name    string
	columns []string
	parent  string // foreign key to the owning aggregate, if any
	id      func(*M) *int64
	fields  func(*M) []any
	values  func(*M) []any
	owner   func(*M) int64
}

func (t table[M]) selectSQL() string {
	return "SELECT id, " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

func (t table[M]) scan(s scanner) (M, error) {
	var m M
	dest := append([]any{t.id(&m)}, t.fields(&m)...)
	if err := s.Scan(dest...); err != nil {
		return m, err
	}
	return m, nil
}

func (t table[M]) collect(rows *sql.Rows) ([]M, error) {
	defer rows.Close()

	out := []M{}
	for rows.Next() {
		m, err := t.scan(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, m)
	}
	return out, translate(rows.Err())
}

func (t table[M]) list(ctx context.Context, q querier) ([]M, error) {
	rows, err := q.QueryContext(ctx, t.selectSQL()+" ORDER BY id")
	if err != nil {
		return nil, translate(err)
	}
	return t.collect(rows)
}

func (t table[M]) listByParent(ctx context.Context, q querier, parentID int64) ([]M, error) {
	rows, err := q.QueryContext(ctx, t.selectSQL()+" WHERE "+t.parent+" = $1 ORDER BY id", parentID)
	if err != nil {
		return nil, translate(err)
	}
	return t.collect(rows)
}

func (t table[M]) get(ctx context.Context, q querier, id int64) (M, error) {
	m, err := t.scan(q.QueryRowContext(ctx, t.selectSQL()+" WHERE id = $1", id))
	return m, translate(err)
}

func (t table[M]) insert(ctx context.Context, q querier, m *M) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.name, strings.Join(t.columns, ", "), placeholders(1, len(t.columns)))
	return translate(q.QueryRowContext(ctx, query, t.values(m)...).Scan(t.id(m)))
}

func (t table[M]) update(ctx context.Context, q querier, m *M) error {
	sets := make([]string, len(t.columns))
	for i, col := range t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		t.name, strings.Join(sets, ", "), len(t.columns)+1)

	args := append(t.values(m), *t.id(m))
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (t table[M]) delete(ctx context.Context, q querier, id int64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (t table[M]) deleteAll(ctx context.Context, q querier) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM "+t.name)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

func (t table[M]) count(ctx context.Context, q querier) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n)
	return n, translate(err)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

// nullable passes a nil pointer as SQL NULL and dereferences the rest, so
// drivers never see pointer arguments.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// groupBy indexes children by their owning aggregate.
func groupBy[M any](items []M, owner func(*M) int64) map[int64][]M {
	out := make(map[int64][]M)
	for i := range items {
		k := owner(&items[i])
		out[k] = append(out[k], items[i])
	}
	return out
}
