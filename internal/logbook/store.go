package logbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schema describes how one log type maps onto its table.
type Schema[T, I any] struct {
	// Kind is the singular name used in events and messages, e.g. "bottle".
	Kind string
	// Table is the SQL table holding the logs.
	Table string
	// IDPrefix is prepended to generated IDs, e.g. "btl-".
	IDPrefix string
	// OwnerColumn references users(id) and decides who may see a row.
	OwnerColumn string
	// SearchColumn is matched by ListOptions.Search.
	SearchColumn string
	// Columns are the type-specific columns, in the order Bind and Fields use.
	Columns []string
	// Bind returns the shared input fields and the values for Columns.
	Bind func(in I) (EntryInput, []any)
	// Fields returns the shared entry of rec and scan destinations for Columns.
	Fields func(rec *T) (*Entry, []any)
}

// Store is the persistence contract Service relies on. Mutations take the
// owner so that the SQL itself is owner-scoped.
type Store[T, I any] interface {
	OwnerOf(ctx context.Context, id string) (string, error)
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, ownerID string, opts ListOptions) ([]T, int, error)
	Create(ctx context.Context, ownerID string, in I) (*T, error)
	Update(ctx context.Context, id, ownerID string, in I) (*T, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// SQLiteStore implements Store for any Schema.
type SQLiteStore[T, I any] struct {
	db     *sql.DB
	schema Schema[T, I]
	now    func() time.Time

	selectSQL string
}

// NewSQLiteStore creates a store for schema on db.
func NewSQLiteStore[T, I any](db *sql.DB, schema Schema[T, I]) *SQLiteStore[T, I] {
	if schema.OwnerColumn == "" {
		schema.OwnerColumn = "owner_id"
	}

	cols := []string{"t.id", "t.date", "t.time", "t.notes", "t.created_at", "t.updated_at",
		"t." + schema.OwnerColumn, "u.email", "u.created_at"}
	for _, c := range schema.Columns {
		cols = append(cols, "t."+c)
	}

	return &SQLiteStore[T, I]{
		db:     db,
		schema: schema,
		now:    time.Now,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s t JOIN users u ON u.id = t.%s",
			strings.Join(cols, ", "), schema.Table, schema.OwnerColumn),
	}
}

// OwnerOf returns the owner of the log with id, or ErrNotFound.
func (s *SQLiteStore[T, I]) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", s.schema.OwnerColumn, s.schema.Table), id,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("looking up %s owner: %w", s.schema.Kind, err)
	}
	return owner, nil
}

// Get returns the log with id and its owner summary, or ErrNotFound.
func (s *SQLiteStore[T, I]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := s.scan(s.db.QueryRowContext(ctx, s.selectSQL+" WHERE t.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s: %w", s.schema.Kind, err)
	}
	return rec, nil
}

// List returns one page of ownerID's logs, newest first, and the total
// number of logs matching the filter.
func (s *SQLiteStore[T, I]) List(ctx context.Context, ownerID string, opts ListOptions) ([]T, int, error) {
	where := fmt.Sprintf(" WHERE t.%s = ?", s.schema.OwnerColumn)
	args := []any{ownerID}
	if opts.Search != "" {
		where += fmt.Sprintf(" AND instr(casefold(t.%s), casefold(?)) > 0", s.schema.SearchColumn)
		args = append(args, opts.Search)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s t", s.schema.Table)+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %ss: %w", s.schema.Kind, err)
	}

	rows, err := s.db.QueryContext(ctx,
		s.selectSQL+where+" ORDER BY t.created_at DESC, t.rowid DESC LIMIT ? OFFSET ?",
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %ss: %w", s.schema.Kind, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", s.schema.Kind, err)
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating %ss: %w", s.schema.Kind, err)
	}
	return items, total, nil
}

// Create inserts a log owned by ownerID and returns it as stored.
func (s *SQLiteStore[T, I]) Create(ctx context.Context, ownerID string, in I) (*T, error) {
	entry, values := s.schema.Bind(in)

	now := s.now()
	date, clock := entry.Date, entry.Time
	if date == "" {
		date = now.Format(DateLayout)
	}
	if clock == "" {
		clock = now.Format(TimeLayout)
	}
	stamp := now.UTC().Format(time.RFC3339)
	id := s.schema.IDPrefix + uuid.NewString()

	cols := append([]string{"id", s.schema.OwnerColumn, "date", "time", "notes", "created_at", "updated_at"}, s.schema.Columns...)
	args := append([]any{id, ownerID, date, clock, nullString(entry.Notes), stamp, stamp}, values...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.schema.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("creating %s: %w", s.schema.Kind, err)
	}

	return s.Get(ctx, id)
}

// Update replaces the mutable fields of the log with id owned by ownerID.
// Omitted date and time keep their stored values. Returns ErrNotFound when
// no row matches both id and owner.
func (s *SQLiteStore[T, I]) Update(ctx context.Context, id, ownerID string, in I) (*T, error) {
	entry, values := s.schema.Bind(in)

	sets := []string{"date = COALESCE(?, date)", "time = COALESCE(?, time)", "notes = ?", "updated_at = ?"}
	args := []any{emptyToNil(entry.Date), emptyToNil(entry.Time), nullString(entry.Notes),
		s.now().UTC().Format(time.RFC3339)}
	for i, c := range s.schema.Columns {
		sets = append(sets, c+" = ?")
		args = append(args, values[i])
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND %s = ?",
		s.schema.Table, strings.Join(sets, ", "), s.schema.OwnerColumn)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", s.schema.Kind, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the log with id owned by ownerID, or returns ErrNotFound.
func (s *SQLiteStore[T, I]) Delete(ctx context.Context, id, ownerID string) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ? AND %s = ?", s.schema.Table, s.schema.OwnerColumn),
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", s.schema.Kind, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore[T, I]) scan(row scanner) (*T, error) {
	var rec T
	entry, extra := s.schema.Fields(&rec)

	var notes sql.NullString
	var createdAt, updatedAt, ownerCreatedAt string

	dest := append([]any{
		&entry.ID, &entry.Date, &entry.Time, &notes, &createdAt, &updatedAt,
		&entry.OwnerID, &entry.Owner.Email, &ownerCreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if notes.Valid {
		entry.Notes = &notes.String
	}
	entry.Owner.ID = entry.OwnerID
	entry.CreatedOn, _ = time.Parse(time.RFC3339, createdAt)           //nolint:errcheck // format is controlled
	entry.UpdatedOn, _ = time.Parse(time.RFC3339, updatedAt)           //nolint:errcheck // format is controlled
	entry.Owner.CreatedOn, _ = time.Parse(time.RFC3339, ownerCreatedAt) //nolint:errcheck // format is controlled

	return &rec, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
