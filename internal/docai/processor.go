// Package docai imports an existing invoice PDF as a draft using the Google
// Document AI invoice parser.
package docai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// MaxDocumentSizeBytes is the maximum document size for processing (20MB)
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// Config holds the Document AI processor settings.
type Config struct {
	ProjectID        string
	Location         string // e.g. "us" or "eu"
	ProcessorID      string
	ProcessorVersion string
	CredentialsFile  string
	CredentialsJSON  string
	Timeout          time.Duration
}

// Validate reports missing settings.
func (c Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: GOOGLE_CLOUD_PROJECT is required", ErrInvalidConfiguration)
	}
	if c.ProcessorID == "" {
		return fmt.Errorf("%w: DOCUMENT_AI_PROCESSOR_ID is required", ErrInvalidConfiguration)
	}
	return nil
}

// processorName constructs the full processor name for the Document AI API.
func (c Config) processorName() string {
	location := c.Location
	if location == "" {
		location = "us"
	}
	if c.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			c.ProjectID, location, c.ProcessorID, c.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, location, c.ProcessorID)
}

// Processor turns invoice PDFs into drafts.
type Processor struct {
	client *documentai.DocumentProcessorClient
	config Config
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a processor connected to Document AI.
func New(ctx context.Context, config Config) (*Processor, error) {
	const op = "New"

	if err := config.Validate(); err != nil {
		return nil, WrapProcessingError(op, err, "")
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption

	// Regional endpoint unless the default multi-region is used
	if config.Location != "" && config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if config.CredentialsJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	} else if config.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if config.CredentialsJSON == "" && config.CredentialsFile == "" {
			return nil, WrapProcessingError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapProcessingError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewWithClient(config, client), nil
}

// NewWithClient creates a processor with an explicit client (for testing).
func NewWithClient(config Config, client *documentai.DocumentProcessorClient) *Processor {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Processor{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
		now:    time.Now,
	}
}

// ExtractDraft sends the PDF to Document AI and maps the result onto a new
// draft. The confidence map is keyed by entity type. The draft is not
// validated.
func (p *Processor) ExtractDraft(ctx context.Context, pdf io.Reader) (*models.Draft, map[string]float32, error) {
	const op = "ExtractDraft"

	pdfBytes, err := io.ReadAll(io.LimitReader(pdf, MaxDocumentSizeBytes+1))
	if err != nil {
		return nil, nil, WrapProcessingError(op, err, "failed to read PDF data")
	}
	if len(pdfBytes) > MaxDocumentSizeBytes {
		return nil, nil, WrapProcessingError(op, ErrDocumentTooLarge, fmt.Sprintf("limit: %d bytes", MaxDocumentSizeBytes))
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, nil, WrapProcessingError(op, ErrInvalidPDF, "missing PDF header")
	}
	if p.client == nil {
		return nil, nil, WrapProcessingError(op, ErrInvalidConfiguration, "no Document AI client")
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: p.config.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	}

	p.log.Debug().
		Str("processor", req.Name).
		Int("bytes", len(pdfBytes)).
		Msg("Sending document to Document AI")

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, nil, p.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, nil, WrapProcessingError(op, ErrProcessingFailed, "no document in response")
	}

	return p.DraftFromDocument(resp.Document)
}

// handleProcessingError converts Document AI errors to import errors.
func (p *Processor) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return WrapProcessingError(op, context.DeadlineExceeded, "processing timeout")
	case errors.Is(err, context.Canceled):
		return WrapProcessingError(op, ErrContextCanceled, "processing was canceled")
	case strings.Contains(errStr, "PermissionDenied") || strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapProcessingError(op, ErrInvalidCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "ResourceExhausted") || strings.Contains(errStr, "QUOTA_EXCEEDED"):
		return WrapProcessingError(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NotFound") || strings.Contains(errStr, "NOT_FOUND"):
		return WrapProcessingError(op, ErrProcessorNotFound, fmt.Sprintf("processor not found: %s", p.config.ProcessorID))
	case strings.Contains(errStr, "InvalidArgument") || strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapProcessingError(op, ErrInvalidPDF, "document format not supported or corrupted")
	default:
		return WrapProcessingError(op, ErrProcessingFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (p *Processor) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
