package workbook

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"

	"screener/internal/config"
)

//go:embed schema.sql
var schemaDDL string

// DuckDB stores tabs as rows of a local DuckDB file. Each sheet row is one
// table row holding its cells as a JSON array.
type DuckDB struct {
	db *sql.DB
}

// OpenDuckDB opens (or creates) the database at path and applies the schema.
// An empty path or ":memory:" opens an in-memory database.
func OpenDuckDB(ctx context.Context, path string) (*DuckDB, error) {
	dsn := path
	if dsn == ":memory:" {
		dsn = ""
	}
	if dsn != "" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// Appends compute the next row number inside one transaction.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DuckDB{db: db}, nil
}

// EnsureSchema applies the workbook DDL.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (d *DuckDB) Close() error {
	return d.db.Close()
}

func (d *DuckDB) Read(ctx context.Context, tab string) ([][]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT row_number, cells FROM sheet_rows WHERE tab = ? ORDER BY row_number`, tab)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var number int
		var raw string
		if err := rows.Scan(&number, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tab, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", tab, number, err)
		}
		for len(out) < number-1 {
			out = append(out, nil)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	return out, nil
}

func (d *DuckDB) Append(ctx context.Context, tab string, row []string) (int, error) {
	raw, err := encodeCells(row)
	if err != nil {
		return 0, err
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_number), 0) + 1 FROM sheet_rows WHERE tab = ?`, tab).Scan(&next); err != nil {
		return 0, fmt.Errorf("next row %s: %w", tab, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheet_rows (tab, row_number, cells) VALUES (?, ?, ?)`, tab, next, raw); err != nil {
		return 0, fmt.Errorf("append %s: %w", tab, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return next, nil
}

func (d *DuckDB) Update(ctx context.Context, tab string, row int, cells []string) error {
	if row < 1 {
		return fmt.Errorf("row %d out of range", row)
	}
	var raw string
	err := d.db.QueryRowContext(ctx,
		`SELECT cells FROM sheet_rows WHERE tab = ? AND row_number = ?`, tab, row).Scan(&raw)
	var current []string
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("load %s row %d: %w", tab, row, err)
	default:
		if current, err = decodeCells(raw); err != nil {
			return fmt.Errorf("decode %s row %d: %w", tab, row, err)
		}
	}
	for len(current) < len(cells) {
		current = append(current, "")
	}
	copy(current, cells)
	encoded, err := encodeCells(current)
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (tab, row_number, cells) VALUES (?, ?, ?)
		 ON CONFLICT (tab, row_number) DO UPDATE SET cells = excluded.cells, updated_at = now()`,
		tab, row, encoded); err != nil {
		return fmt.Errorf("update %s row %d: %w", tab, row, err)
	}
	return nil
}

func (d *DuckDB) Format(ctx context.Context, tab string, row int, _ int, color config.Color) error {
	encoded, err := json.Marshal(color)
	if err != nil {
		return fmt.Errorf("encode color: %w", err)
	}
	res, err := d.db.ExecContext(ctx,
		`UPDATE sheet_rows SET background = ?, updated_at = now() WHERE tab = ? AND row_number = ?`,
		string(encoded), tab, row)
	if err != nil {
		return fmt.Errorf("format %s row %d: %w", tab, row, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("format %s row %d: row not found", tab, row)
	}
	return nil
}

// Background returns the color stored for row, if any.
func (d *DuckDB) Background(ctx context.Context, tab string, row int) (config.Color, bool, error) {
	var raw sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT background FROM sheet_rows WHERE tab = ? AND row_number = ?`, tab, row).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !raw.Valid) {
		return config.Color{}, false, nil
	}
	if err != nil {
		return config.Color{}, false, fmt.Errorf("load background: %w", err)
	}
	var color config.Color
	if err := json.Unmarshal([]byte(raw.String), &color); err != nil {
		return config.Color{}, false, fmt.Errorf("decode background: %w", err)
	}
	return color, true, nil
}

// ImportCSV appends every record of r to tab and returns the number of rows.
func (d *DuckDB) ImportCSV(ctx context.Context, tab string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("read csv: %w", err)
		}
		if _, err := d.Append(ctx, tab, record); err != nil {
			return count, err
		}
		count++
	}
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(data), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, err
	}
	return cells, nil
}
