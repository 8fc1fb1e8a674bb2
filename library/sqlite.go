package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stratfolio/ingest"
	"github.com/rustyeddy/stratfolio/strategy"
)

// Store persists uploads and portfolio snapshots. Loaded records are
// trusted as already normalized.
type Store interface {
	SaveUpload(ctx context.Context, f ingest.ParsedFile) error
	DeleteUpload(ctx context.Context, name string) error
	LoadUploads(ctx context.Context) ([]ingest.ParsedFile, error)
	SavePortfolio(ctx context.Context, p strategy.Portfolio) error
	DeletePortfolio(ctx context.Context, id string) error
	LoadPortfolios(ctx context.Context) ([]strategy.Portfolio, error)
	Close() error
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a Store in a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// SaveUpload stores f, replacing an earlier upload of the same name.
func (s *SQLite) SaveUpload(ctx context.Context, f ingest.ParsedFile) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if err := deleteUpload(ctx, tx, f.Name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO uploads (name, uploaded_at) VALUES (?, ?)`,
			f.Name, f.UploadedAt.UTC().Format(timeLayout),
		); err != nil {
			return err
		}
		for i, st := range f.Strategies {
			rec, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("encode %s[%d]: %w", f.Name, i, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO strategies (id, upload_name, position, symbol, period, record)
				VALUES (?, ?, ?, ?, ?, ?)`,
				st.ID, f.Name, i, st.DataID.Symbol, st.DataID.Period, string(rec),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) DeleteUpload(ctx context.Context, name string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		return deleteUpload(ctx, tx, name)
	})
}

func deleteUpload(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM strategies WHERE upload_name = ?`, name); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM uploads WHERE name = ?`, name)
	return err
}

// LoadUploads returns uploads oldest first, records in file order.
func (s *SQLite) LoadUploads(ctx context.Context) ([]ingest.ParsedFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.name, u.uploaded_at, s.id, s.record
		FROM uploads u
		LEFT JOIN strategies s ON s.upload_name = u.name
		ORDER BY u.uploaded_at ASC, u.name ASC, s.position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ingest.ParsedFile
	for rows.Next() {
		var (
			name, at   string
			id, record sql.NullString
		)
		if err := rows.Scan(&name, &at, &id, &record); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Name != name {
			t, err := time.Parse(timeLayout, at)
			if err != nil {
				return nil, fmt.Errorf("upload %q: %w", name, err)
			}
			out = append(out, ingest.ParsedFile{Name: name, UploadedAt: t, Strategies: []strategy.Strategy{}})
		}
		if !id.Valid {
			continue
		}
		st, err := decode(id.String, record.String)
		if err != nil {
			return nil, err
		}
		last := &out[len(out)-1]
		last.Strategies = append(last.Strategies, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SavePortfolio inserts or replaces p with its members.
func (s *SQLite) SavePortfolio(ctx context.Context, p strategy.Portfolio) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if err := deletePortfolio(ctx, tx, p.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO portfolios (id, name, created_at) VALUES (?, ?, ?)`,
			p.ID, p.Name, p.CreatedAt.UTC().Format(timeLayout),
		); err != nil {
			return err
		}
		for i, m := range p.Members {
			rec, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("encode member %d: %w", i, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO portfolio_members (portfolio_id, position, strategy_id, record)
				VALUES (?, ?, ?, ?)`,
				p.ID, i, m.ID, string(rec),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) DeletePortfolio(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		return deletePortfolio(ctx, tx, id)
	})
}

func deletePortfolio(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_members WHERE portfolio_id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
	return err
}

// LoadPortfolios returns portfolios oldest first.
func (s *SQLite) LoadPortfolios(ctx context.Context) ([]strategy.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.created_at, m.strategy_id, m.record
		FROM portfolios p
		JOIN portfolio_members m ON m.portfolio_id = p.id
		ORDER BY p.created_at ASC, p.id ASC, m.position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []strategy.Portfolio
	for rows.Next() {
		var id, name, at, memberID, record string
		if err := rows.Scan(&id, &name, &at, &memberID, &record); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			t, err := time.Parse(timeLayout, at)
			if err != nil {
				return nil, fmt.Errorf("portfolio %q: %w", id, err)
			}
			out = append(out, strategy.Portfolio{ID: id, Name: name, CreatedAt: t})
		}
		st, err := decode(memberID, record)
		if err != nil {
			return nil, err
		}
		last := &out[len(out)-1]
		last.Members = append(last.Members, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func decode(id, record string) (strategy.Strategy, error) {
	var st strategy.Strategy
	if err := json.Unmarshal([]byte(record), &st); err != nil {
		return strategy.Strategy{}, fmt.Errorf("decode strategy %q: %w", id, err)
	}
	st.ID = id
	return st, nil
}
