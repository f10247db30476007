package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-inventory/backend"
	"github.com/uptrace/bun"
)

var (
	productColumns = columnSet(
		backend.ColID, backend.ColName, backend.ColCategoryID, backend.ColStock,
		backend.ColPrice, backend.ColDescription, backend.ColUserID, backend.ColCreatedAt,
	)
	categoryColumns = columnSet(
		backend.ColID, backend.ColName, backend.ColUserID, backend.ColCreatedAt,
	)
	// columns an update may never touch
	immutableColumns = columnSet(backend.ColID, backend.ColUserID, backend.ColCreatedAt)
)

func columnSet(cols ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		out[c] = struct{}{}
	}
	return out
}

// table is an owner-scoped backend.Table over one bun model.
type table[R any] struct {
	db      bun.IDB
	name    string
	now     func() time.Time
	columns map[string]struct{}
	// stamp prepares a row for insert and returns its owner
	stamp func(row *R, now time.Time) string
}

func newTable[R any](db bun.IDB, name string, now func() time.Time, columns map[string]struct{}, stamp func(*R, time.Time) string) *table[R] {
	return &table[R]{db: db, name: name, now: now, columns: columns, stamp: stamp}
}

func (t *table[R]) Select(ctx context.Context, q *backend.Query) ([]R, error) {
	if err := t.checkQuery(q); err != nil {
		return nil, backend.Wrap("select", t.name, err)
	}

	rows := make([]R, 0)
	sq := t.db.NewSelect().Model(&rows)
	if cols := q.Columns(); len(cols) > 0 {
		sq = sq.Column(cols...)
	}
	sq = applyFilters(sq, q.Filters())
	for _, o := range q.Orders() {
		sq = sq.OrderExpr("? "+direction(o.Ascending), bun.Ident(o.Field))
	}

	if err := sq.Scan(ctx); err != nil {
		return nil, backend.Wrap("select", t.name, err)
	}
	return rows, nil
}

func (t *table[R]) Single(ctx context.Context, q *backend.Query) (R, error) {
	var row R
	if err := t.checkQuery(q); err != nil {
		return row, backend.Wrap("single", t.name, err)
	}

	sq := t.db.NewSelect().Model(&row)
	if cols := q.Columns(); len(cols) > 0 {
		sq = sq.Column(cols...)
	}
	sq = applyFilters(sq, q.Filters()).Limit(1)

	if err := sq.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = backend.ErrNotFound
		}
		return row, backend.Wrap("single", t.name, err)
	}
	return row, nil
}

func (t *table[R]) Insert(ctx context.Context, row R) (R, error) {
	if owner := t.stamp(&row, t.now().UTC()); owner == "" {
		var zero R
		return zero, backend.Wrap("insert", t.name, backend.ErrUnscoped)
	}

	if _, err := t.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		var zero R
		return zero, backend.Wrap("insert", t.name, err)
	}
	return row, nil
}

func (t *table[R]) Update(ctx context.Context, patch backend.Patch, q *backend.Query) error {
	if err := t.checkQuery(q); err != nil {
		return backend.Wrap("update", t.name, err)
	}
	if len(patch) == 0 {
		return nil
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		if _, ok := t.columns[k]; !ok {
			return backend.Wrap("update", t.name, t.unknownColumn(k))
		}
		if _, ok := immutableColumns[k]; ok {
			return backend.Wrap("update", t.name, fmt.Errorf("column %s.%s cannot be updated", t.name, k))
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	uq := t.db.NewUpdate().Model((*R)(nil))
	for _, k := range keys {
		uq = uq.Set("? = ?", bun.Ident(k), patch[k])
	}
	uq = applyFilters(uq, q.Filters())

	if _, err := uq.Exec(ctx); err != nil {
		return backend.Wrap("update", t.name, err)
	}
	return nil
}

func (t *table[R]) Delete(ctx context.Context, q *backend.Query) error {
	if err := t.checkQuery(q); err != nil {
		return backend.Wrap("delete", t.name, err)
	}

	dq := applyFilters(t.db.NewDelete().Model((*R)(nil)), q.Filters())
	if _, err := dq.Exec(ctx); err != nil {
		return backend.Wrap("delete", t.name, err)
	}
	return nil
}

// checkQuery rejects unknown columns and queries without an owner predicate.
func (t *table[R]) checkQuery(q *backend.Query) error {
	owner, ok := q.EqValue(backend.ColUserID)
	if s, isString := owner.(string); !ok || !isString || s == "" {
		return backend.ErrUnscoped
	}
	for _, c := range q.Columns() {
		if _, ok := t.columns[c]; !ok {
			return t.unknownColumn(c)
		}
	}
	for _, f := range q.Filters() {
		if _, ok := t.columns[f.Field]; !ok {
			return t.unknownColumn(f.Field)
		}
	}
	for _, o := range q.Orders() {
		if _, ok := t.columns[o.Field]; !ok {
			return t.unknownColumn(o.Field)
		}
	}
	return nil
}

func (t *table[R]) unknownColumn(col string) error {
	return fmt.Errorf("column %s.%s does not exist", t.name, col)
}

type wherer[Q any] interface {
	Where(query string, args ...any) Q
}

func applyFilters[Q wherer[Q]](q Q, filters []backend.Filter) Q {
	for _, f := range filters {
		switch f.Op {
		case backend.OpEq:
			if f.Value == nil {
				q = q.Where("? IS NULL", bun.Ident(f.Field))
				continue
			}
			q = q.Where("? = ?", bun.Ident(f.Field), f.Value)
		case backend.OpIn:
			if len(f.Values) == 0 {
				q = q.Where("1 = 0")
				continue
			}
			q = q.Where("? IN (?)", bun.Ident(f.Field), bun.In(f.Values))
		}
	}
	return q
}

func direction(ascending bool) string {
	if ascending {
		return "ASC"
	}
	return "DESC"
}
