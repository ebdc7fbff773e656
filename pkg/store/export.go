package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Format is an export file format
type Format string

const (
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates an export format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatTXT, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", name)
	}
}

// ContentType is the MIME type served for f
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ExportOptions controls what Export writes
type ExportOptions struct {
	// Header adds "#" comment lines to txt exports
	Header bool
	// OnlyAvailable skips records not reported available
	OnlyAvailable bool
	// Now stamps the header, time.Now when zero
	Now time.Time
}

var csvHeader = []string{"domain", "status", "available", "created_at", "checked_at"}

// ExportStore writes every saved candidate of s to w
func ExportStore(ctx context.Context, s Store, f Format, w io.Writer, opts ExportOptions) error {
	records, err := s.Candidates(ctx)
	if err != nil {
		return err
	}
	return Export(w, records, f, opts)
}

// Export writes records to w in format f
func Export(w io.Writer, records []domain.CandidateRecord, f Format, opts ExportOptions) error {
	if opts.OnlyAvailable {
		kept := make([]domain.CandidateRecord, 0, len(records))
		for _, r := range records {
			if r.Available != nil && *r.Available {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	switch f {
	case FormatTXT:
		return exportTXT(w, records, opts)
	case FormatCSV:
		return exportCSV(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		_, err := ParseFormat(string(f))
		return err
	}
}

func exportTXT(w io.Writer, records []domain.CandidateRecord, opts ExportOptions) error {
	if opts.Header {
		_, err := fmt.Fprintf(w, "# Generated: %s\n# Count: %d\n# Export: %s\n",
			opts.Now.UTC().Format(time.RFC3339), len(records), uuid.NewString())
		if err != nil {
			return err
		}
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.Domain); err != nil {
			return err
		}
	}
	return nil
}

func exportCSV(w io.Writer, records []domain.CandidateRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		available := ""
		if r.Available != nil {
			available = strconv.FormatBool(*r.Available)
		}
		checked := ""
		if r.CheckedAt != nil {
			checked = r.CheckedAt.UTC().Format(time.RFC3339)
		}
		row := []string{r.Domain, r.Status, available, r.CreatedAt.UTC().Format(time.RFC3339), checked}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
