// Package render lays out an invoice as an A4 PDF document.
//
// Four templates are available. They all show the same data (header with
// number and dates, subject, both parties with their filled optional fields,
// the line items, subtotal, tax and total, notes) and differ only in layout
// and styling.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// Template names a visual variant.
type Template string

const (
	Classic Template = "classic"
	Modern  Template = "modern"
	Minimal Template = "minimal"
	Excel   Template = "excel"
)

// DefaultTemplate is used when no template is chosen.
const DefaultTemplate = Modern

// ErrUnknownTemplate is returned for template names outside Templates().
var ErrUnknownTemplate = errors.New("unknown template")

var templates = []Template{Classic, Modern, Minimal, Excel}

// Templates returns every template in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// ParseTemplate resolves a template name. An empty name selects DefaultTemplate.
func ParseTemplate(name string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return DefaultTemplate, nil
	}
	for _, known := range templates {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownTemplate, name, templateList())
}

func (t Template) String() string { return string(t) }

func templateList() string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Renderer produces the PDF document of one invoice. The returned document
// has not been written anywhere yet.
type Renderer interface {
	Template() Template
	Render(inv models.InvoiceData, totals invoice.Totals) (*gofpdf.Fpdf, error)
}

// New returns the renderer for t.
func New(t Template) (Renderer, error) {
	switch t {
	case Classic:
		return classic{}, nil
	case Modern:
		return modern{}, nil
	case Minimal:
		return minimal{}, nil
	case Excel:
		return excel{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, t)
	}
}

// Render renders inv with template t using totals derived from the invoice itself.
func Render(t Template, inv models.InvoiceData) (*gofpdf.Fpdf, error) {
	r, err := New(t)
	if err != nil {
		return nil, err
	}
	return r.Render(inv, invoice.Compute(inv.Draft))
}
