package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"invoicer/pkg/models"
)

func sampleInvoice() models.InvoiceData {
	date, _ := models.ParseDate("2024-06-03")
	due, _ := models.ParseDate("2024-07-03")
	return models.InvoiceData{
		ID: "b0c4",
		Draft: models.Draft{
			InvoiceNumber: "INV-2024-001",
			Subject:       "Website",
			Date:          date,
			DueDate:       due,
			CompanyName:   "Atelier Nour",
			ClientName:    "Sarl Tassili",
			Items: []models.InvoiceItem{
				{ID: "1", Quantity: 2, Price: 100},
				{ID: "2", Quantity: 1, Price: 50.255},
			},
			TaxRate: 19,
		},
		UpdatedAt: time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = extractSpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	rows := Rows([]models.InvoiceData{sampleInvoice()})
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, len(Headers))
	assert.Equal(t, []interface{}{
		"b0c4", "INV-2024-001", "Website", "2024-06-03", "2024-07-03",
		"Atelier Nour", "Sarl Tassili", 2, 19.0,
		250.26, 47.55, 297.8, "2024-06-03T09:30:00Z",
	}, row)

	assert.Empty(t, Rows(nil))
}

func TestLastColumn(t *testing.T) {
	assert.Equal(t, "M", lastColumn())
}

type fakeSheets struct {
	mu      sync.Mutex
	cleared []string
	updates map[string][][]interface{}
	batches int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && !strings.Contains(path, "/values/"):
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","sheets":[{"properties":{"title":"Invoices","sheetId":7}}]}`))
	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"range":"Invoices!A1:M1"}`))
	case r.Method == http.MethodPut:
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates[path[strings.LastIndex(path, "/")+1:]] = vr.Values
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, path)
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":batchUpdate"):
		f.batches++
		_, _ = w.Write([]byte(`{"replies":[{}]}`))
	default:
		http.NotFound(w, r)
	}
}

func TestSync(t *testing.T) {
	fake := &fakeSheets{updates: map[string][][]interface{}{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	s := newService(svc, "sheet-1")
	require.NoError(t, s.Sync(ctx, []models.InvoiceData{sampleInvoice()}, ""))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	require.Contains(t, fake.updates, "Invoices!A1:M1")
	assert.Equal(t, "ID", fake.updates["Invoices!A1:M1"][0][0])
	assert.Equal(t, 1, fake.batches)

	require.Len(t, fake.cleared, 1)
	assert.Contains(t, fake.cleared[0], "Invoices!A2:M")

	rows := fake.updates["Invoices!A2"]
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-2024-001", rows[0][1])
}
