package models

import (
	"time"
)

// TimestampLayout is the capture time format of RawProduct.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// NotAvailable marks a text field the extractor could not find.
const NotAvailable = "N/A"

// Field names, in the column order the pipeline produces them.
const (
	FieldTitle     = "Title"
	FieldPrice     = "Price"
	FieldRating    = "Rating"
	FieldColors    = "Colors"
	FieldSize      = "Size"
	FieldGender    = "Gender"
	FieldTimestamp = "Timestamp"
)

// RawProduct is one unvalidated catalog item as extracted from markup.
// A nil field means the item did not carry it.
type RawProduct struct {
	Title     *string `json:"Title"`
	Price     *string `json:"Price"`
	Rating    *string `json:"Rating"`
	Colors    *string `json:"Colors"`
	Size      *string `json:"Size"`
	Gender    *string `json:"Gender"`
	Timestamp string  `json:"Timestamp"`
}

// NewPlaceholder returns the record used when extraction of an item fails.
func NewPlaceholder(capturedAt time.Time) RawProduct {
	return RawProduct{
		Title:     String(NotAvailable),
		Price:     String(NotAvailable),
		Timestamp: capturedAt.Format(TimestampLayout),
	}
}

// Fields returns the product as ordered name/value pairs. Absent values are nil.
func (p RawProduct) Fields() []Field {
	return []Field{
		{Name: FieldTitle, Value: deref(p.Title)},
		{Name: FieldPrice, Value: deref(p.Price)},
		{Name: FieldRating, Value: deref(p.Rating)},
		{Name: FieldColors, Value: deref(p.Colors)},
		{Name: FieldSize, Value: deref(p.Size)},
		{Name: FieldGender, Value: deref(p.Gender)},
		{Name: FieldTimestamp, Value: p.Timestamp},
	}
}

// Field is a named cell value.
type Field struct {
	Name  string
	Value interface{}
}

func String(s string) *string {
	return &s
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
