package atlas

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Reader reads archived map runs from an atlas database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an atlas database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='maps'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain a maps table")
	}

	return &Reader{db: db, path: path}, nil
}

// Info summarizes one archived run without its payload.
type Info struct {
	ID        int64
	Variant   string
	Seed      int64
	Width     int
	Height    int
	Format    string
	Size      int
	CreatedAt time.Time
}

// List returns summaries of all archived runs, newest first.
func (r *Reader) List() ([]Info, error) {
	rows, err := r.db.Query(
		"SELECT id, variant, seed, width, height, format, LENGTH(data), created_at FROM maps ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query maps: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var created string
		if err := rows.Scan(&info.ID, &info.Variant, &info.Seed, &info.Width,
			&info.Height, &info.Format, &info.Size, &created); err != nil {
			return nil, fmt.Errorf("failed to scan map row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			info.CreatedAt = ts
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Read returns the decompressed payload of one archived run.
func (r *Reader) Read(id int64) ([]byte, error) {
	var compressed []byte
	err := r.db.QueryRow("SELECT data FROM maps WHERE id=?", id).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("map not found: id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query map %d: %w", id, err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress map %d: %w", id, err)
	}
	return data, nil
}

// Metadata reads the atlas metadata table.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	meta := Metadata{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		switch name {
		case "name":
			meta.Name = value
		case "description":
			meta.Description = value
		case "generator":
			meta.Generator = value
		case "version":
			meta.Version = value
		}
	}
	return meta, rows.Err()
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
