package export

import "fmt"

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer registered for a report format.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func row(data Dataset, r map[string]string) []string {
	out := make([]string, len(data.Headers))
	for i, h := range data.Headers {
		out[i] = r[h]
	}
	return out
}
