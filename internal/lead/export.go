// internal/lead/export.go
//
// CSV export for the admin panel.

package lead

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader matches what the admin spreadsheet template expects.
var csvHeader = []string{"ID", "Provider", "Offer", "Email", "Phone", "Status", "Created"}

// WriteCSV streams leads as UTF-8 CSV.  A BOM is written first so
// Excel detects the encoding.
func WriteCSV(w io.Writer, leads []ListedLead) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for i := range leads {
		l := &leads[i]
		rec := []string{
			strconv.FormatInt(l.ID, 10),
			strOr(l.ProviderName),
			strOr(l.OfferName),
			l.Email,
			l.Phone,
			l.Status,
			l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
