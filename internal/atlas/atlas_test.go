package atlas

import (
	"bytes"
	"path/filepath"
	"testing"
)

func testMetadata() Metadata {
	return Metadata{
		Name:        "test atlas",
		Description: "roundtrip fixture",
		Generator:   "reliefmap",
		Version:     "1.0",
	}
}

func TestWriterReaderRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.atlas")

	writer, err := NewWriter(path, testMetadata())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	payload := bytes.Repeat([]byte("reliefmap"), 100)
	entries := []Entry{
		{Variant: "highland", Seed: 1, Width: 200, Height: 200, Format: "html", Data: payload},
		{Variant: "verdant", Seed: 2, Width: 200, Height: 200, Format: "png", Data: payload},
		{Variant: "atlas", Seed: 3, Width: 100, Height: 100, Format: "png", Data: []byte("small")},
	}
	for _, e := range entries {
		if err := writer.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()

	infos, err := reader.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("listed %d runs, want 3", len(infos))
	}
	// Newest first.
	if infos[0].Variant != "atlas" || infos[2].Variant != "highland" {
		t.Errorf("unexpected list order: %s ... %s", infos[0].Variant, infos[2].Variant)
	}
	for _, info := range infos {
		if info.CreatedAt.IsZero() {
			t.Errorf("run %d has no timestamp", info.ID)
		}
	}

	data, err := reader.Read(infos[2].ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatal("payload did not survive the compression roundtrip")
	}

	meta, err := reader.Metadata()
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta != testMetadata() {
		t.Errorf("metadata = %+v, want %+v", meta, testMetadata())
	}
}

func TestWriterBatchFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.atlas")

	writer, err := NewWriter(path, testMetadata())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer writer.Close()

	// One more than the batch size forces an automatic flush.
	for i := 0; i <= DefaultBatchSize; i++ {
		entry := Entry{Variant: "highland", Seed: int64(i), Width: 10, Height: 10, Format: "png", Data: []byte{1, 2, 3}}
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	var count int
	if err := writer.db.QueryRow("SELECT COUNT(*) FROM maps").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != DefaultBatchSize+1 {
		t.Errorf("stored %d entries, want %d", count, DefaultBatchSize+1)
	}
}

func TestWriteRejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.atlas")

	writer, err := NewWriter(path, testMetadata())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer writer.Close()

	tests := []struct {
		name  string
		entry Entry
	}{
		{"empty variant", Entry{Format: "png", Data: []byte{1}}},
		{"bad format", Entry{Variant: "highland", Format: "gif", Data: []byte{1}}},
		{"empty data", Entry{Variant: "highland", Format: "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := writer.Write(tt.entry); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestOpenReaderMissingSchema(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "missing.atlas")); err == nil {
		t.Error("expected error opening a database without a maps table")
	}
}
