package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Period", "Monday", "Tuesday"},
		Rows: []map[string]string{
			{"Period": "1 (08:00)", "Monday": "Mathematics - Jane (R1)", "Tuesday": ""},
			{"Period": "2 (08:40)", "Monday": "East: English - Tom\nWest: Kiswahili - Amina", "Tuesday": "Science - Jane"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "Period,Monday,Tuesday", lines[0])
	assert.Equal(t, "1 (08:00),Mathematics - Jane (R1),", lines[1])
	assert.Contains(t, string(out), "\"East: English - Tom\nWest: Kiswahili - Amina\"")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Grade 3 - Term 1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
