package models

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// FieldKey names one of the supplementary identifiers a party may carry.
type FieldKey string

const (
	FieldFiscalID          FieldKey = "fiscalId"
	FieldStaticID          FieldKey = "staticId"
	FieldArtistCardNumber  FieldKey = "artistCardNumber"
	FieldBankAccount       FieldKey = "bankAccount"
	FieldPhoneNumber       FieldKey = "phoneNumber"
	FieldBusinessRegNumber FieldKey = "businessRegNumber"
)

// ErrUnknownField is returned for keys outside the enumerated set.
var ErrUnknownField = errors.New("unknown optional field")

var fieldKeys = []FieldKey{
	FieldFiscalID,
	FieldStaticID,
	FieldArtistCardNumber,
	FieldBankAccount,
	FieldPhoneNumber,
	FieldBusinessRegNumber,
}

var fieldLabels = map[FieldKey][2]string{
	FieldFiscalID:          {"Fiscal Identification Number", "Fiscal ID"},
	FieldStaticID:          {"Static Identification Number", "Static ID"},
	FieldArtistCardNumber:  {"Artist Card Number", "Artist Card"},
	FieldBankAccount:       {"Bank Account", "Bank Account"},
	FieldPhoneNumber:       {"Phone Number", "Phone"},
	FieldBusinessRegNumber: {"Business Register Number", "Business Reg."},
}

// FieldKeys returns every optional field key in canonical order.
func FieldKeys() []FieldKey {
	out := make([]FieldKey, len(fieldKeys))
	copy(out, fieldKeys)
	return out
}

// ParseFieldKey validates a raw key.
func ParseFieldKey(raw string) (FieldKey, error) {
	key := FieldKey(raw)
	if !key.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
	return key, nil
}

// Valid reports whether k belongs to the enumerated set.
func (k FieldKey) Valid() bool {
	_, ok := fieldLabels[k]
	return ok
}

// Exclusive reports whether k shares the exclusive slot.
func (k FieldKey) Exclusive() bool {
	return k == FieldArtistCardNumber || k == FieldBusinessRegNumber
}

// Label is the long label shown when editing.
func (k FieldKey) Label() string {
	return fieldLabels[k][0]
}

// ShortLabel is the compact label printed on rendered invoices.
func (k FieldKey) ShortLabel() string {
	return fieldLabels[k][1]
}

// Field is a non-exclusive optional slot. A present field may hold an empty value.
type Field struct {
	Value   string
	Present bool
}

// ExclusiveKind tells which of the two mutually exclusive keys occupies the
// exclusive slot.
type ExclusiveKind uint8

const (
	ExclusiveNone ExclusiveKind = iota
	ExclusiveArtistCard
	ExclusiveBusinessReg
)

// Key returns the field key stored in the slot, or "" when empty.
func (k ExclusiveKind) Key() FieldKey {
	switch k {
	case ExclusiveArtistCard:
		return FieldArtistCardNumber
	case ExclusiveBusinessReg:
		return FieldBusinessRegNumber
	default:
		return ""
	}
}

func exclusiveKindOf(key FieldKey) ExclusiveKind {
	switch key {
	case FieldArtistCardNumber:
		return ExclusiveArtistCard
	case FieldBusinessRegNumber:
		return ExclusiveBusinessReg
	default:
		return ExclusiveNone
	}
}

// ExclusiveSlot holds at most one of artistCardNumber and businessRegNumber.
type ExclusiveSlot struct {
	Kind  ExclusiveKind
	Value string
}

// OptionalFields is the set of supplementary identifiers attached to a party.
// The artist card number and the business register number share one slot, so
// a set can never hold both.
type OptionalFields struct {
	FiscalID    Field
	StaticID    Field
	BankAccount Field
	PhoneNumber Field
	Exclusive   ExclusiveSlot
}

func (f *OptionalFields) slot(key FieldKey) *Field {
	switch key {
	case FieldFiscalID:
		return &f.FiscalID
	case FieldStaticID:
		return &f.StaticID
	case FieldBankAccount:
		return &f.BankAccount
	case FieldPhoneNumber:
		return &f.PhoneNumber
	default:
		return nil
	}
}

// Add inserts key with an empty value. Adding an exclusive key evicts the
// other exclusive key if it is present. Adding a key that is already present
// keeps its value.
func (f *OptionalFields) Add(key FieldKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if f.Has(key) {
		return nil
	}
	if key.Exclusive() {
		f.Exclusive = ExclusiveSlot{Kind: exclusiveKindOf(key)}
		return nil
	}
	*f.slot(key) = Field{Present: true}
	return nil
}

// Remove deletes key if present.
func (f *OptionalFields) Remove(key FieldKey) {
	if key.Exclusive() {
		if f.Exclusive.Kind.Key() == key {
			f.Exclusive = ExclusiveSlot{}
		}
		return
	}
	if s := f.slot(key); s != nil {
		*s = Field{}
	}
}

// Update sets the value of key, inserting it when absent.
func (f *OptionalFields) Update(key FieldKey, value string) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if key.Exclusive() {
		f.Exclusive = ExclusiveSlot{Kind: exclusiveKindOf(key), Value: value}
		return nil
	}
	*f.slot(key) = Field{Value: value, Present: true}
	return nil
}

// Get returns the value of key and whether it is present.
func (f OptionalFields) Get(key FieldKey) (string, bool) {
	if key.Exclusive() {
		if f.Exclusive.Kind.Key() == key {
			return f.Exclusive.Value, true
		}
		return "", false
	}
	s := f.slot(key)
	if s == nil || !s.Present {
		return "", false
	}
	return s.Value, true
}

// Has reports whether key is present.
func (f OptionalFields) Has(key FieldKey) bool {
	_, ok := f.Get(key)
	return ok
}

// Keys returns the present keys in canonical order.
func (f OptionalFields) Keys() []FieldKey {
	var keys []FieldKey
	for _, key := range fieldKeys {
		if f.Has(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of present keys.
func (f OptionalFields) Len() int {
	return len(f.Keys())
}

// Filled returns the present keys whose value is not empty, in canonical order.
func (f OptionalFields) Filled() []FieldKey {
	var keys []FieldKey
	for _, key := range fieldKeys {
		if v, ok := f.Get(key); ok && v != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Available returns the keys that can still be added: absent keys, with the
// exclusive keys offered only while the exclusive slot is empty.
func (f OptionalFields) Available() []FieldKey {
	var keys []FieldKey
	for _, key := range fieldKeys {
		if f.Has(key) {
			continue
		}
		if key.Exclusive() && f.Exclusive.Kind != ExclusiveNone {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// MarshalJSON encodes the set as a sparse object of present keys.
func (f OptionalFields) MarshalJSON() ([]byte, error) {
	m := make(map[FieldKey]string, len(fieldKeys))
	for _, key := range f.Keys() {
		v, _ := f.Get(key)
		m[key] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a sparse object. Unknown keys are ignored. If both
// exclusive keys are present, a non-empty value beats an empty one and
// artistCardNumber wins a tie.
func (f *OptionalFields) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := OptionalFields{}
	for _, key := range fieldKeys {
		v, ok := m[string(key)]
		if !ok {
			continue
		}
		if key.Exclusive() && out.Exclusive.Kind != ExclusiveNone {
			if out.Exclusive.Value != "" || v == "" {
				continue
			}
		}
		if err := out.Update(key, v); err != nil {
			return err
		}
	}
	*f = out
	return nil
}
