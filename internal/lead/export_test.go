// internal/lead/export_test.go

package lead

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	provider := `Cloud "Ru"`
	created := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	leads := []ListedLead{
		{
			Lead: Lead{
				ID: 1, Email: "ivan@example.com", Phone: "+79000000000",
				Status: StatusNew, CreatedAt: created,
			},
			ProviderName: &provider,
		},
		{
			Lead: Lead{
				ID: 2, Email: "olga@example.com", Phone: "+79111111111",
				Status: StatusClosed, CreatedAt: created,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, leads))

	out := buf.String()
	// BOM first so Excel picks up UTF-8.
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(out, "\ufeff"), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Provider,Offer,Email,Phone,Status,Created", lines[0])
	// Embedded quotes must come out CSV-escaped.
	assert.Contains(t, lines[1], `"Cloud ""Ru"""`)
	assert.Contains(t, lines[1], "2026-08-29 10:30:00")
	// Missing provider/offer render as empty fields.
	assert.Equal(t, "2,,,olga@example.com,+79111111111,closed,2026-08-29 10:30:00", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "\ufeffID,Provider,Offer,Email,Phone,Status,Created\n", buf.String())
}
