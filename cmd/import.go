package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/docai"
	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// ImportOutput is what --dry-run prints.
type ImportOutput struct {
	Draft      models.Draft       `json:"draft"`
	Confidence map[string]float32 `json:"confidence,omitempty"`
	Metadata   ImportMetadata     `json:"metadata"`
}

// ImportMetadata describes one Document AI run.
type ImportMetadata struct {
	FileName           string        `json:"file_name"`
	FileSize           int64         `json:"file_size_bytes"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

func newImportCmd(a *app) *cobra.Command {
	var (
		dryRun      bool
		timeoutSecs int
	)

	cmd := &cobra.Command{
		Use:   "import <pdf-file>",
		Short: "Create an invoice from an existing PDF using Google Document AI",
		Long: `Read an existing invoice PDF with Google Document AI's invoice parser and save
it as a new invoice. Supplier and receiver become the company and the client;
tax ids, bank accounts, phone and registration numbers become optional fields;
the tax rate is derived from the net and tax amounts.

Use --dry-run to print the extracted draft as JSON instead of saving it. The
JSON can be corrected by hand and saved with "invoicer create --from".

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  GOOGLE_CLOUD_LOCATION - Processing location (us, eu, etc.)
  DOCUMENT_AI_PROCESSOR_ID - Your Document AI invoice processor ID`,
		Example: `  invoicer import supplier-invoice.pdf
  invoicer import supplier-invoice.pdf --dry-run > draft.json
  invoicer create --from draft.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.log.With().Str("command", "import").Logger()
			pdfPath := args[0]

			fileInfo, err := validateInvoicePDF(pdfPath, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
			defer cancel()

			cfg := a.cfg.GetDocumentAIConfig()
			cfg.Timeout = time.Duration(timeoutSecs) * time.Second
			processor, err := docai.New(ctx, cfg)
			if err != nil {
				return handleImportError(err, log)
			}
			defer func() {
				if closeErr := processor.Close(); closeErr != nil {
					log.Warn().Err(closeErr).Msg("Failed to close Document AI client")
				}
			}()

			pdfFile, err := os.Open(pdfPath)
			if err != nil {
				return fmt.Errorf("failed to open PDF file: %w", err)
			}
			defer pdfFile.Close()

			log.Info().
				Str("file", pdfPath).
				Int64("size", fileInfo.Size()).
				Msg("Processing invoice PDF with Document AI")

			startTime := time.Now()
			draft, confidence, err := processor.ExtractDraft(ctx, pdfFile)
			if err != nil {
				return handleImportError(err, log)
			}

			if dryRun {
				return writeImportOutput(cmd.OutOrStdout(), ImportOutput{
					Draft:      *draft,
					Confidence: confidence,
					Metadata: ImportMetadata{
						FileName:           filepath.Base(fileInfo.Name()),
						FileSize:           fileInfo.Size(),
						ProcessedAt:        time.Now(),
						ProcessingDuration: time.Since(startTime),
					},
				})
			}

			if err := invoice.ValidateDraft(*draft); err != nil {
				log.Warn().Err(err).Msg("Extracted draft is incomplete")
				return fmt.Errorf("%w\nRun with --dry-run, complete the JSON and save it with \"invoicer create --from <file>\"", err)
			}

			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			created, err := repo.Create(cmd.Context(), *draft)
			if err != nil {
				return handleRepositoryError(err, log)
			}

			log.Info().
				Str("id", created.ID).
				Str("invoice_number", created.InvoiceNumber).
				Dur("duration", time.Since(startTime)).
				Msg("Invoice imported")

			for _, key := range sortedKeys(confidence) {
				log.Debug().Str("field", key).Float32("confidence", confidence[key]).Msg("Extraction confidence")
			}

			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the extracted draft as JSON instead of saving it")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 120, "processing timeout in seconds")
	return cmd
}

func writeImportOutput(w io.Writer, output ImportOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// validateInvoicePDF validates the PDF file before it is uploaded.
func validateInvoicePDF(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", pdfPath).Msg("Invoice PDF file not found")
			return nil, fmt.Errorf("invoice PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", pdfPath).Msg("Permission denied accessing PDF file")
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().Str("file", pdfPath).Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	if fileInfo.Size() > docai.MaxDocumentSizeBytes {
		log.Error().
			Str("file", pdfPath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", docai.MaxDocumentSizeBytes).
			Msg("PDF file exceeds maximum size limit")
		return nil, fmt.Errorf("PDF file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), docai.MaxDocumentSizeBytes)
	}

	return fileInfo, nil
}
