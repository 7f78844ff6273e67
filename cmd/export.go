package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

// renderStored looks up id and renders it with the named template, falling
// back to DEFAULT_TEMPLATE.
func (a *app) renderStored(ctx context.Context, id, templateName string) (models.InvoiceData, *gofpdf.Fpdf, error) {
	repo, err := a.repository(ctx)
	if err != nil {
		return models.InvoiceData{}, nil, err
	}
	inv, ok := repo.Get(id)
	if !ok {
		return models.InvoiceData{}, nil, notFound(id)
	}

	if templateName == "" {
		templateName = a.cfg.DefaultTemplate
	}
	tmpl, err := render.ParseTemplate(templateName)
	if err != nil {
		return models.InvoiceData{}, nil, err
	}

	doc, err := render.Render(tmpl, inv)
	if err != nil {
		return models.InvoiceData{}, nil, &export.Error{Op: "render", Err: err}
	}
	return inv, doc, nil
}

func templateNames() string {
	names := make([]string, 0, len(render.Templates()))
	for _, t := range render.Templates() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

func newExportCmd(a *app) *cobra.Command {
	var (
		templateName string
		output       string
		toPrinter    bool
		printCommand string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Render an invoice to a PDF file and optionally print it",
		Long: fmt.Sprintf(`Render an invoice to a PDF file.

Templates: %s. The default comes from DEFAULT_TEMPLATE.
Without -o the file is written to the current directory as
invoice-<number>.pdf. With --print the file is then handed to the print
command (PRINT_COMMAND, "lp" by default).`, templateNames()),
		Example: `  invoicer export 6f1c... --template classic -o out/invoice.pdf
  invoicer export 6f1c... --print --print-command "lp -d office"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.log.With().Str("command", "export").Str("id", args[0]).Logger()

			inv, doc, err := a.renderStored(cmd.Context(), args[0], templateName)
			if err != nil {
				return handleExportError(err, log)
			}

			path := output
			if path == "" {
				path = export.FileName(inv)
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, export.FileName(inv))
			}

			if err := export.ToFile(doc, path); err != nil {
				return handleExportError(err, log)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)

			if !toPrinter {
				return nil
			}
			if printCommand == "" {
				printCommand = a.cfg.PrintCommand
			}
			if err := export.Print(cmd.Context(), path, printCommand); err != nil {
				return handleExportError(err, log)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to the printer\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template: "+templateNames())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory")
	cmd.Flags().BoolVar(&toPrinter, "print", false, "print the exported file")
	cmd.Flags().StringVar(&printCommand, "print-command", "", "print command, the file path is appended (default PRINT_COMMAND)")
	return cmd
}
