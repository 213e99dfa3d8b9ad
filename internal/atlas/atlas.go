// Package atlas archives rendered map runs in a SQLite database.
package atlas

import (
	"fmt"
	"time"
)

// Metadata describes one atlas database.
type Metadata struct {
	Name        string
	Description string
	Generator   string
	Version     string
}

// ToMap converts Metadata to key/value pairs for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Generator != "" {
		result["generator"] = m.Generator
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	return result
}

// Entry is one archived output file of a pipeline run.
type Entry struct {
	Variant   string
	Seed      int64
	Width     int
	Height    int
	Format    string // "png" or "html"
	Data      []byte // gzip-compressed on disk
	CreatedAt time.Time
}

func (e Entry) validate() error {
	if e.Variant == "" {
		return fmt.Errorf("entry variant must not be empty")
	}
	if e.Format != "png" && e.Format != "html" {
		return fmt.Errorf("invalid entry format %q: must be 'png' or 'html'", e.Format)
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("entry data must not be empty")
	}
	return nil
}
