package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Title:   "Estado emocional",
		Headers: []string{"studentId", "name", "mood"},
		Rows: []map[string]string{
			{"studentId": "EST-1234", "name": "Ana Martínez", "mood": "4"},
			{"studentId": "EST-5678", "name": "Carlos López"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimPrefix(string(out), "\ufeff"), "\n")
	assert.Equal(t, "studentId,name,mood", lines[0])
	assert.Equal(t, "EST-1234,Ana Martínez,4", lines[1])
	assert.Equal(t, "EST-5678,Carlos López,", lines[2])
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
