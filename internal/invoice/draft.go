package invoice

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"invoicer/pkg/models"
)

const (
	DefaultTaxRate = 19.0
	DefaultUnit    = "pcs"
	DefaultDueDays = 30
)

// ItemField names an editable column of a line item.
type ItemField string

const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemUnit        ItemField = "unit"
	ItemPrice       ItemField = "price"
)

// NewDraft returns a blank draft as a new invoice form would show it: a
// generated invoice number, today's date, a due date 30 days out, one empty
// line item and the default tax rate.
func NewDraft(now time.Time) models.Draft {
	today := models.DateOf(now)
	return models.Draft{
		InvoiceNumber: GenerateInvoiceNumber(now),
		Date:          today,
		DueDate:       today.AddDays(DefaultDueDays),
		Items:         []models.InvoiceItem{NewItem()},
		TaxRate:       DefaultTaxRate,
	}
}

// GenerateInvoiceNumber returns INV-<year>-<NNN> with a random three digit
// suffix. Numbers are not guaranteed to be unique.
func GenerateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%03d", now.Year(), rand.IntN(1000))
}

// NewItem returns a line item with a fresh id, quantity 1, unit "pcs" and price 0.
func NewItem() models.InvoiceItem {
	return models.InvoiceItem{
		ID:       uuid.NewString(),
		Quantity: MinQuantity,
		Unit:     DefaultUnit,
	}
}

// AddItem appends a default line item and returns it.
func AddItem(d *models.Draft) models.InvoiceItem {
	item := NewItem()
	d.Items = append(d.Items, item)
	return item
}

// RemoveItem deletes the item with the given id. The last remaining item
// cannot be removed. Unknown ids are ignored.
func RemoveItem(d *models.Draft, id string) error {
	idx := itemIndex(d, id)
	if idx < 0 {
		return nil
	}
	if len(d.Items) == 1 {
		return ErrLastItem
	}
	d.Items = append(d.Items[:idx:idx], d.Items[idx+1:]...)
	return nil
}

// UpdateItem sets one column of an item from raw user input. Quantity and
// price are normalized, never rejected. It reports whether the item exists.
func UpdateItem(d *models.Draft, id string, field ItemField, raw string) (bool, error) {
	idx := itemIndex(d, id)
	if idx < 0 {
		return false, nil
	}
	item := &d.Items[idx]
	switch field {
	case ItemDescription:
		item.Description = raw
	case ItemUnit:
		item.Unit = raw
	case ItemQuantity:
		item.Quantity = ParseQuantity(raw)
	case ItemPrice:
		item.Price = ParsePrice(raw)
	default:
		return true, fmt.Errorf("%w: %q", ErrUnknownItemField, field)
	}
	return true, nil
}

func itemIndex(d *models.Draft, id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}
