package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PG implements Store on a single Postgres table of jsonb documents. Batch
// commits map to one SQL transaction, which is what carries the all-or-nothing
// guarantee the pairing protocol depends on.
type PG struct {
	db *sql.DB
}

var _ Store = (*PG)(nil)

// OpenPG connects to Postgres using the pgx stdlib driver.
func OpenPG(dsn string) (*PG, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PG{db: db}, nil
}

// NewPG wraps an existing connection pool. Used by tests and cmd wiring.
func NewPG(db *sql.DB) *PG { return &PG{db: db} }

func (s *PG) Close() error { return s.db.Close() }

func (s *PG) DB() *sql.DB { return s.db }

func (s *PG) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.QueryRowContext(ctx, `select data from documents where path=$1`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeJSONDoc(raw)
}

func (s *PG) Set(ctx context.Context, path string, doc Document) error {
	collection, _, err := SplitPath(path)
	if err != nil {
		return err
	}
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into documents(path, collection, data, updated_at)
		values ($1,$2,$3,now())
		on conflict (path) do update
		set data = excluded.data, updated_at = now()
	`, path, collection, raw)
	return err
}

func (s *PG) Update(ctx context.Context, path string, fields Document) error {
	return s.readModifyWrite(ctx, path, fields, false)
}

func (s *PG) Merge(ctx context.Context, path string, fields Document) error {
	return s.readModifyWrite(ctx, path, fields, true)
}

// readModifyWrite applies field operations under a row lock so that concurrent
// array-union/array-remove updates cannot clobber each other.
func (s *PG) readModifyWrite(ctx context.Context, path string, fields Document, createMissing bool) error {
	collection, _, err := SplitPath(path)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `select data from documents where path=$1 for update`, path).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !createMissing {
			return ErrNotFound
		}
		raw = []byte(`{}`)
	case err != nil:
		return err
	}

	doc, err := decodeJSONDoc(raw)
	if err != nil {
		return err
	}
	applyFields(doc, fields, time.Now().UTC())

	updated, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into documents(path, collection, data, updated_at)
		values ($1,$2,$3,now())
		on conflict (path) do update
		set data = excluded.data, updated_at = now()
	`, path, collection, updated); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PG) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	sqlQuery := `select path, data from documents where collection=$1`
	args := []any{q.Collection}
	for _, f := range q.Filters {
		args = append(args, fmt.Sprint(f.Value))
		// Field names come from code, never from callers.
		sqlQuery += fmt.Sprintf(` and data->>'%s' = $%d`, f.Field, len(args))
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeJSONDoc(raw)
		if err != nil {
			// A row that is not a JSON object cannot be shaped into a
			// document; skip it rather than fail the whole query.
			continue
		}
		_, id, err := SplitPath(path)
		if err != nil {
			continue
		}
		out = append(out, Snapshot{Path: path, ID: id, Data: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sorting happens here, with the same comparison rules as the memory
	// store, so both implementations order timestamps identically.
	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (s *PG) Batch() WriteBatch {
	return &pgBatch{store: s}
}

type pgBatch struct {
	store *PG
	sets  []Snapshot
}

func (b *pgBatch) Set(path string, doc Document) {
	b.sets = append(b.sets, Snapshot{Path: path, Data: doc})
}

func (b *pgBatch) Commit(ctx context.Context) error {
	for _, w := range b.sets {
		if _, _, err := SplitPath(w.Path); err != nil {
			return fmt.Errorf("batch write %q: %w", w.Path, err)
		}
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range b.sets {
		collection, _, err := SplitPath(w.Path)
		if err != nil {
			return err
		}
		raw, err := encodeDoc(w.Data)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			insert into documents(path, collection, data, updated_at)
			values ($1,$2,$3,now())
			on conflict (path) do update
			set data = excluded.data, updated_at = now()
		`, w.Path, collection, raw); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func encodeDoc(doc Document) ([]byte, error) {
	resolved := make(Document, len(doc))
	applyFields(resolved, doc, time.Now().UTC())
	return json.Marshal(resolved)
}

func decodeJSONDoc(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
