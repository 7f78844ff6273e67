// Package export turns a rendered invoice document into a file, a byte
// slice or a printed page. Nothing here touches the invoice collection.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// DefaultPrintCommand receives the exported file path as its last argument.
const DefaultPrintCommand = "lp"

var (
	// ErrNoDocument is returned when there is nothing to export.
	ErrNoDocument = errors.New("no rendered document")

	// ErrNoPrintCommand is returned when printing is requested without a command.
	ErrNoPrintCommand = errors.New("no print command configured")
)

// Error reports a failed export or print.
type Error struct {
	// Op is the export step that failed ("write", "render", "print").
	Op string

	// Path is the destination file, if any.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("export: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns invoice-<invoiceNumber>.pdf with characters that are not
// safe in file names replaced by "-".
func FileName(inv models.InvoiceData) string {
	number := strings.Trim(unsafeName.ReplaceAllString(inv.InvoiceNumber, "-"), "-.")
	if number == "" {
		number = "untitled"
	}
	return "invoice-" + number + ".pdf"
}

// Bytes writes the document to memory.
func Bytes(doc *gofpdf.Fpdf) ([]byte, error) {
	if doc == nil {
		return nil, &Error{Op: "render", Err: ErrNoDocument}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &Error{Op: "render", Err: err}
	}
	return buf.Bytes(), nil
}

// ToFile writes the document to path. The file appears complete or not at
// all; a failed export leaves no partial file behind.
func ToFile(doc *gofpdf.Fpdf, path string) error {
	log := logger.WithComponent("export")

	data, err := Bytes(doc)
	if err != nil {
		var exportErr *Error
		if errors.As(err, &exportErr) {
			exportErr.Path = path
		}
		return err
	}

	if err := writeAtomic(path, data); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("Invoice exported")
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Printer hands exported files to a system print command.
type Printer struct {
	command []string
	log     zerolog.Logger
}

// NewPrinter parses command ("lp", "lp -d office") into a program and its
// arguments.
func NewPrinter(command string) (*Printer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, &Error{Op: "print", Err: ErrNoPrintCommand}
	}
	return &Printer{command: fields, log: logger.WithComponent("print")}, nil
}

// Print runs the print command once with path appended. The command's
// output is included in the error when it fails.
func (p *Printer) Print(ctx context.Context, path string) error {
	args := append(append([]string(nil), p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	p.log.Debug().Strs("command", cmd.Args).Msg("Sending invoice to printer")
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return &Error{Op: "print", Path: path, Err: err}
	}
	p.log.Info().Str("path", path).Msg("Invoice sent to printer")
	return nil
}

// Print is NewPrinter(command) followed by Print.
func Print(ctx context.Context, path, command string) error {
	p, err := NewPrinter(command)
	if err != nil {
		return err
	}
	return p.Print(ctx, path)
}
