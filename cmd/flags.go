package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// itemColumns is the order of the parts of an --item value.
var itemColumns = []invoice.ItemField{
	invoice.ItemDescription,
	invoice.ItemQuantity,
	invoice.ItemUnit,
	invoice.ItemPrice,
}

// draftFlags are the editing flags shared by create and update.
type draftFlags struct {
	from          string
	number        string
	subject       string
	date          string
	dueDate       string
	company       string
	companyAddr   string
	client        string
	clientAddr    string
	taxRate       string
	notes         string
	items         []string
	addItems      []string
	setItems      []string
	removeItems   []int
	companyFields []string
	clientFields  []string
	addCompany    []string
	addClient     []string
	dropCompany   []string
	dropClient    []string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "from", "", "read the draft from a JSON file (\"-\" for stdin); flags are applied on top")
	fs.StringVar(&f.number, "number", "", "invoice number")
	fs.StringVar(&f.subject, "subject", "", "invoice subject")
	fs.StringVar(&f.date, "date", "", "invoice date (YYYY-MM-DD)")
	fs.StringVar(&f.dueDate, "due-date", "", "due date (YYYY-MM-DD)")
	fs.StringVar(&f.company, "company", "", "issuing company name")
	fs.StringVar(&f.companyAddr, "company-address", "", "issuing company address")
	fs.StringVar(&f.client, "client", "", "client name")
	fs.StringVar(&f.clientAddr, "client-address", "", "client address")
	fs.StringVar(&f.taxRate, "tax-rate", "", "tax rate in percent, clamped to 0-100")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringArrayVar(&f.items, "item", nil, "line item \"description|quantity|unit|price\"; replaces all items (repeatable)")
	fs.StringArrayVar(&f.addItems, "add-item", nil, "append a line item \"description|quantity|unit|price\" (repeatable)")
	fs.StringArrayVar(&f.setItems, "set-item", nil, "edit one item column \"N:field=value\", N counting from 1 (repeatable)")
	fs.IntSliceVar(&f.removeItems, "remove-item", nil, "remove the item at position N, counting from 1")
	fs.StringArrayVar(&f.companyFields, "company-field", nil, "set a company field \"key=value\" (see \"invoicer fields\")")
	fs.StringArrayVar(&f.clientFields, "client-field", nil, "set a client field \"key=value\"")
	fs.StringSliceVar(&f.addCompany, "add-company-field", nil, "add empty company fields by key; an exclusive key replaces the other one")
	fs.StringSliceVar(&f.addClient, "add-client-field", nil, "add empty client fields by key")
	fs.StringSliceVar(&f.dropCompany, "remove-company-field", nil, "remove company fields by key")
	fs.StringSliceVar(&f.dropClient, "remove-client-field", nil, "remove client fields by key")
}

// apply edits d with every flag the user set. Numeric input is normalized,
// not rejected.
func (f *draftFlags) apply(cmd *cobra.Command, d *models.Draft) error {
	changed := cmd.Flags().Changed

	if f.from != "" {
		if err := loadDraft(f.from, cmd.InOrStdin(), d); err != nil {
			return err
		}
	}

	text := []struct {
		flag  string
		value string
		dest  *string
	}{
		{"number", f.number, &d.InvoiceNumber},
		{"subject", f.subject, &d.Subject},
		{"company", f.company, &d.CompanyName},
		{"company-address", f.companyAddr, &d.CompanyAddress},
		{"client", f.client, &d.ClientName},
		{"client-address", f.clientAddr, &d.ClientAddress},
		{"notes", f.notes, &d.Notes},
	}
	for _, t := range text {
		if changed(t.flag) {
			*t.dest = unescapeNewlines(t.value)
		}
	}

	if changed("date") {
		date, err := models.ParseDate(f.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		d.Date = date
	}
	if changed("due-date") {
		due, err := models.ParseDate(f.dueDate)
		if err != nil {
			return fmt.Errorf("--due-date: %w", err)
		}
		d.DueDate = due
	}
	if changed("tax-rate") {
		d.TaxRate = invoice.ParseTaxRate(f.taxRate)
	}

	if err := f.applyItems(d); err != nil {
		return err
	}

	for _, side := range []struct {
		side models.Side
		set  []string
		add  []string
		drop []string
	}{
		{models.SideCompany, f.companyFields, f.addCompany, f.dropCompany},
		{models.SideClient, f.clientFields, f.addClient, f.dropClient},
	} {
		fields := d.Fields(side.side)
		for _, raw := range side.drop {
			key, err := models.ParseFieldKey(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			fields.Remove(key)
		}
		for _, raw := range side.add {
			key, err := models.ParseFieldKey(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			if err := fields.Add(key); err != nil {
				return err
			}
		}
		for _, raw := range side.set {
			key, value, err := parseFieldAssignment(raw)
			if err != nil {
				return err
			}
			if err := fields.Update(key, value); err != nil {
				return err
			}
		}
	}

	invoice.Normalize(d)
	return nil
}

func (f *draftFlags) applyItems(d *models.Draft) error {
	if len(f.items) > 0 {
		d.Items = d.Items[:0:0]
		for _, raw := range f.items {
			if _, err := addParsedItem(d, raw); err != nil {
				return err
			}
		}
	}

	for _, raw := range f.setItems {
		pos, field, value, err := parseItemEdit(raw)
		if err != nil {
			return err
		}
		id, err := itemAt(d, pos)
		if err != nil {
			return err
		}
		if _, err := invoice.UpdateItem(d, id, field, value); err != nil {
			return err
		}
	}

	// Positions refer to the list before any removal.
	ids := make([]string, 0, len(f.removeItems))
	for _, pos := range f.removeItems {
		id, err := itemAt(d, pos)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		if err := invoice.RemoveItem(d, id); err != nil {
			return err
		}
	}

	for _, raw := range f.addItems {
		if _, err := addParsedItem(d, raw); err != nil {
			return err
		}
	}
	return nil
}

// addParsedItem appends an item from "description|quantity|unit|price".
// Missing trailing parts keep the item defaults.
func addParsedItem(d *models.Draft, raw string) (models.InvoiceItem, error) {
	parts := strings.Split(raw, "|")
	if len(parts) > len(itemColumns) {
		return models.InvoiceItem{}, fmt.Errorf("item %q has more than %d parts (description|quantity|unit|price)", raw, len(itemColumns))
	}

	item := invoice.AddItem(d)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" && itemColumns[i] != invoice.ItemDescription {
			continue
		}
		if _, err := invoice.UpdateItem(d, item.ID, itemColumns[i], part); err != nil {
			return models.InvoiceItem{}, err
		}
	}
	return d.Items[len(d.Items)-1], nil
}

// parseItemEdit reads "N:field=value".
func parseItemEdit(raw string) (int, invoice.ItemField, string, error) {
	posPart, assignment, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, "", "", fmt.Errorf("item edit %q is not N:field=value", raw)
	}
	pos, err := strconv.Atoi(strings.TrimSpace(posPart))
	if err != nil {
		return 0, "", "", fmt.Errorf("item edit %q: position must be a number", raw)
	}
	field, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return 0, "", "", fmt.Errorf("item edit %q is not N:field=value", raw)
	}
	return pos, invoice.ItemField(strings.ToLower(strings.TrimSpace(field))), value, nil
}

func itemAt(d *models.Draft, pos int) (string, error) {
	if pos < 1 || pos > len(d.Items) {
		return "", fmt.Errorf("no item at position %d (the invoice has %d)", pos, len(d.Items))
	}
	return d.Items[pos-1].ID, nil
}

// parseFieldAssignment reads "key=value" for an optional party field.
func parseFieldAssignment(raw string) (models.FieldKey, string, error) {
	k, value, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", fmt.Errorf("field %q is not key=value", raw)
	}
	key, err := models.ParseFieldKey(strings.TrimSpace(k))
	if err != nil {
		return "", "", err
	}
	return key, strings.TrimSpace(value), nil
}

// loadDraft decodes a JSON draft over d, so keys missing from the file keep
// the values already in d. A present items array replaces the items whole.
func loadDraft(path string, stdin io.Reader, d *models.Draft) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return draftDecodeError(path, err)
	}
	// An items array replaces the list; decoding over the old backing array
	// would leak ids and columns of the previous items into the new ones.
	if _, ok := top["items"]; ok {
		d.Items = nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		return draftDecodeError(path, err)
	}

	for i := range d.Items {
		if d.Items[i].ID == "" {
			d.Items[i].ID = invoice.NewItem().ID
		}
		if d.Items[i].Unit == "" {
			d.Items[i].Unit = invoice.DefaultUnit
		}
	}
	return nil
}

func draftDecodeError(path string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("draft %s is not valid JSON at offset %d: %w", path, syntaxErr.Offset, err)
	}
	return fmt.Errorf("failed to decode draft %s: %w", path, err)
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// sortedKeys is used for stable confidence output.
func sortedKeys(m map[string]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
