package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

const stampLayout = "2006-01-02T15:04:05.000000000Z"

type rowScanner interface {
	Scan(dest ...any) error
}

// meta points at the columns the store owns rather than the caller.
type meta struct {
	id      *string
	user    *string
	created *time.Time
	updated *time.Time // nil when the table has no updated_at
}

// schema maps an entity onto its table. cols starts with id, user_id and
// ends with created_at[, updated_at]; args and scan follow the same order.
type schema[T any] struct {
	entity string
	cols   []string
	meta   func(*T) meta
	args   func(T) ([]any, error)
	scan   func(rowScanner) (T, error)
}

type table[T any] struct {
	r      *SQLiteRepository
	schema schema[T]
}

func (t *table[T]) fail(op string, err error) error {
	return gateway.Fail(op, t.schema.entity, translate(err))
}

func (t *table[T]) List(ctx context.Context, sess gateway.Session, f gateway.Filter) ([]T, error) {
	if err := sess.Check(); err != nil {
		return nil, t.fail("list", err)
	}
	if err := gateway.CheckFilter(t.schema.entity, f); err != nil {
		return nil, err
	}

	query, args := t.selectQuery(f)
	rows, err := t.r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.fail("list", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := t.schema.scan(rows)
		if err != nil {
			return nil, t.fail("list", fmt.Errorf("scan %s: %w", t.schema.entity, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("list", err)
	}
	return out, nil
}

func (t *table[T]) selectQuery(f gateway.Filter) (string, []any) {
	var (
		b     strings.Builder
		where []string
		args  []any
	)
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(t.schema.cols, ", "), t.schema.entity)

	for _, c := range f.Eq {
		where = append(where, c.Field+" = ?")
		args = append(args, columnValue(c.Field, c.Value))
	}
	if rg := f.Range; rg != nil {
		where = append(where, rg.Field+" >= ?", rg.Field+" <= ?")
		args = append(args, rg.From.String(), rg.To.String())
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	dir := "ASC"
	if f.Order != nil {
		if f.Order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, rowid %s", f.Order.Field, dir, dir)
	} else {
		b.WriteString(" ORDER BY rowid")
	}
	return b.String(), args
}

// columnValue converts filter text to the stored representation.
func columnValue(field, value string) any {
	if field == gateway.FieldIsActive {
		if value == "true" {
			return 1
		}
		return 0
	}
	return value
}

func (t *table[T]) Create(ctx context.Context, sess gateway.Session, rec T) (T, error) {
	var zero T
	if err := sess.Check(); err != nil {
		return zero, t.fail("create", err)
	}

	m := t.schema.meta(&rec)
	now := t.r.stamp()
	*m.id = newID()
	*m.user = sess.UserID
	*m.created = now
	if m.updated != nil {
		*m.updated = now
	}

	args, err := t.schema.args(rec)
	if err != nil {
		return zero, t.fail("create", err)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.schema.cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.schema.entity, strings.Join(t.schema.cols, ", "), marks)
	if _, err := t.r.db.ExecContext(ctx, query, args...); err != nil {
		return zero, t.fail("create", err)
	}
	return rec, nil
}

func (t *table[T]) Update(ctx context.Context, sess gateway.Session, rec T) (T, error) {
	var zero T
	if err := sess.Check(); err != nil {
		return zero, t.fail("update", err)
	}

	m := t.schema.meta(&rec)
	if m.updated != nil {
		*m.updated = t.r.stamp()
	}
	args, err := t.schema.args(rec)
	if err != nil {
		return zero, t.fail("update", err)
	}

	// id, user_id and created_at are immutable
	var sets []string
	var setArgs []any
	for i, col := range t.schema.cols {
		switch col {
		case gateway.FieldID, gateway.FieldUserID, gateway.FieldCreatedAt:
			continue
		}
		sets = append(sets, col+" = ?")
		setArgs = append(setArgs, args[i])
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.schema.entity, strings.Join(sets, ", "))
	res, err := t.r.db.ExecContext(ctx, query, append(setArgs, *m.id)...)
	if err != nil {
		return zero, t.fail("update", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return zero, t.fail("update", err)
	} else if n == 0 {
		return zero, t.fail("update", gateway.ErrNotFound)
	}

	rows, err := t.List(ctx, sess, gateway.Where(gateway.FieldID, *m.id))
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, t.fail("update", gateway.ErrNotFound)
	}
	return rows[0], nil
}

func (t *table[T]) Delete(ctx context.Context, sess gateway.Session, id string) error {
	if err := sess.Check(); err != nil {
		return t.fail("delete", err)
	}
	res, err := t.r.db.ExecContext(ctx, "DELETE FROM "+t.schema.entity+" WHERE id = ?", id)
	if err != nil {
		return t.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail("delete", err)
	}
	if n == 0 {
		return t.fail("delete", gateway.ErrNotFound)
	}
	return nil
}

func formatStamp(t time.Time) string { return t.UTC().Format(stampLayout) }

func parseStamp(s string) (time.Time, error) { return time.Parse(stampLayout, s) }

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func encodeURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("encode image urls: %w", err)
	}
	return string(b), nil
}

func decodeURLs(s string) ([]string, error) {
	var urls []string
	if s == "" {
		return urls, nil
	}
	if err := json.Unmarshal([]byte(s), &urls); err != nil {
		return nil, fmt.Errorf("decode image urls: %w", err)
	}
	if len(urls) == 0 {
		return nil, nil
	}
	return urls, nil
}

// stamps holds the raw text of timestamp columns during a scan.
type stamps struct {
	created, updated string
}

func (s stamps) into(m meta) error {
	var err error
	if *m.created, err = parseStamp(s.created); err != nil {
		return err
	}
	if m.updated != nil {
		if *m.updated, err = parseStamp(s.updated); err != nil {
			return err
		}
	}
	return nil
}
