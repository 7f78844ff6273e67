package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// InvoiceItem is one billable line of an invoice.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description" validate:"max=500"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Unit        string  `json:"unit" validate:"max=32"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// Draft holds every user-editable field of an invoice. It is what create and
// update accept; identity and timestamps are assigned by the repository.
type Draft struct {
	InvoiceNumber  string         `json:"invoiceNumber" validate:"required,max=64"`
	Subject        string         `json:"subject" validate:"required"`
	Date           Date           `json:"date"`
	DueDate        Date           `json:"dueDate"`
	CompanyName    string         `json:"companyName" validate:"required"`
	CompanyAddress string         `json:"companyAddress" validate:"required"`
	CompanyFields  OptionalFields `json:"companyFields"`
	ClientName     string         `json:"clientName" validate:"required"`
	ClientAddress  string         `json:"clientAddress" validate:"required"`
	ClientFields   OptionalFields `json:"clientFields"`
	Items          []InvoiceItem  `json:"items" validate:"required,min=1,dive"`
	TaxRate        float64        `json:"taxRate" validate:"gte=0,lte=100"`
	Notes          string         `json:"notes"`
}

// InvoiceData is the persisted invoice aggregate. The embedded Draft is
// flattened into the same JSON object.
type InvoiceData struct {
	ID string `json:"id"`
	Draft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	out := d
	if d.Items != nil {
		out.Items = make([]InvoiceItem, len(d.Items))
		copy(out.Items, d.Items)
	}
	return out
}

// Clone returns a deep copy of the invoice.
func (inv InvoiceData) Clone() InvoiceData {
	out := inv
	out.Draft = inv.Draft.Clone()
	return out
}

// Party returns the name, address and optional fields of one side of the invoice.
func (d Draft) Party(side Side) (name, address string, fields OptionalFields) {
	if side == SideClient {
		return d.ClientName, d.ClientAddress, d.ClientFields
	}
	return d.CompanyName, d.CompanyAddress, d.CompanyFields
}

// Fields returns a pointer to the optional field set of one party so callers
// can edit it in place.
func (d *Draft) Fields(side Side) *OptionalFields {
	if side == SideClient {
		return &d.ClientFields
	}
	return &d.CompanyFields
}

// Side identifies the issuing or billed party.
type Side string

const (
	SideCompany Side = "company"
	SideClient  Side = "client"
)

// Date is a calendar date without time zone, encoded as YYYY-MM-DD.
// The zero Date encodes as an empty string and an empty string decodes to
// the zero Date, so records written before a date was set still load.
type Date struct {
	civil.Date
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d}, nil
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Date.Before(other.Date)
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format(layout)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Date.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
