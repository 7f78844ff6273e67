package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"invoicer/internal/docai"
	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/storage"
	"invoicer/pkg/models"
)

// ErrInvoiceNotFound is returned by commands that need an existing invoice.
var ErrInvoiceNotFound = errors.New("invoice not found")

func notFound(id string) error {
	return fmt.Errorf("%w: %s (run \"invoicer list\" to see ids)", ErrInvoiceNotFound, id)
}

// handleRepositoryError provides user-friendly messages for store failures.
// The collection in memory is unchanged when any of these is returned.
func handleRepositoryError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice store operation failed")

	switch {
	case errors.Is(err, repository.ErrCorruptCollection):
		return fmt.Errorf("the stored invoice collection cannot be read. Fix or move the file behind STORE_PATH/STORE_KEY: %w", err)
	case errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("STORE_KEY may only contain letters, digits, '.', '_' and '-': %w", err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("permission denied writing the invoice store: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation canceled; nothing was saved")
	default:
		return fmt.Errorf("failed to save invoices; nothing was changed: %w", err)
	}
}

// handleDraftError explains why a draft was rejected.
func handleDraftError(err error, log zerolog.Logger) error {
	switch {
	case errors.Is(err, invoice.ErrInvalidDraft):
		log.Debug().Err(err).Msg("Draft rejected")
		return err
	case errors.Is(err, models.ErrUnknownField):
		keys := make([]string, 0, len(models.FieldKeys()))
		for _, k := range models.FieldKeys() {
			keys = append(keys, string(k))
		}
		return fmt.Errorf("%w. Known fields: %s", err, strings.Join(keys, ", "))
	case errors.Is(err, invoice.ErrLastItem):
		return fmt.Errorf("%w; add another item before removing this one", err)
	default:
		return err
	}
}

// handleExportError reports a failed export once. The stored invoice is
// never touched by an export.
func handleExportError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Export failed")

	var exportErr *export.Error
	switch {
	case errors.Is(err, render.ErrUnknownTemplate):
		return err
	case errors.Is(err, export.ErrNoPrintCommand):
		return fmt.Errorf("printing needs a command. Set PRINT_COMMAND or pass --print-command")
	case errors.As(err, &exportErr) && exportErr.Op == "print":
		return fmt.Errorf("the PDF was saved to %s but printing failed: %w", exportErr.Path, exportErr.Err)
	case errors.As(err, &exportErr):
		return fmt.Errorf("could not write %s: %w", exportErr.Path, exportErr.Err)
	default:
		return fmt.Errorf("export failed: %w", err)
	}
}

// handleImportError provides user-friendly error messages for Document AI failures.
func handleImportError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice import failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("invoice import timed out. Try increasing --timeout or importing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("invoice import was canceled")
	case errors.Is(err, docai.ErrMissingCredentials):
		return fmt.Errorf("missing Google Cloud credentials. Please set one of:\n" +
			"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n" +
			"  GOOGLE_CREDENTIALS='<json-credentials>'\n" +
			"Original error: %w", err)
	case errors.Is(err, docai.ErrInvalidConfiguration):
		return fmt.Errorf("invalid Document AI configuration. Please check your .env file:\n" +
			"  GOOGLE_CLOUD_PROJECT - your Google Cloud project ID\n" +
			"  GOOGLE_CLOUD_LOCATION - processing location (us, eu, etc.)\n" +
			"  DOCUMENT_AI_PROCESSOR_ID - your Document AI processor ID\n" +
			"Original error: %w", err)
	case errors.Is(err, docai.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, docai.ErrDocumentTooLarge):
		return fmt.Errorf("PDF file is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, docai.ErrProcessorNotFound):
		return fmt.Errorf("Document AI processor not found. Please check DOCUMENT_AI_PROCESSOR_ID")
	case errors.Is(err, docai.ErrNothingExtracted):
		return fmt.Errorf("no invoice fields were found in the PDF. Create the invoice by hand with \"invoicer create\"")
	case errors.Is(err, docai.ErrQuotaExceeded):
		return fmt.Errorf("Document AI API quota exceeded. Check your project quotas in Google Cloud Console")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		errors.Is(err, docai.ErrInvalidCredentials):
		return fmt.Errorf("Google Cloud authentication failed. Ensure the service account has the "+
			"'Document AI API User' role: %w", err)
	case errors.Is(err, docai.ErrProcessingFailed):
		return fmt.Errorf("Document AI processing failed. This may be due to network issues or service unavailability: %w", err)
	default:
		return fmt.Errorf("invoice import failed: %w", err)
	}
}
