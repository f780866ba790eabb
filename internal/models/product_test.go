package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPlaceholder(t *testing.T) {
	at := time.Date(2024, 5, 17, 9, 3, 7, 0, time.UTC)
	p := NewPlaceholder(at)

	assert.Equal(t, NotAvailable, *p.Title)
	assert.Equal(t, NotAvailable, *p.Price)
	assert.Nil(t, p.Rating)
	assert.Nil(t, p.Colors)
	assert.Nil(t, p.Size)
	assert.Nil(t, p.Gender)
	assert.Equal(t, "2024-05-17 09:03:07", p.Timestamp)
}

func TestFieldsOrderAndNulls(t *testing.T) {
	p := RawProduct{
		Title:     String("T-shirt 2"),
		Rating:    String("⭐ 3.9 / 5"),
		Timestamp: "2024-05-17 09:03:07",
	}

	fields := p.Fields()

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"Title", "Price", "Rating", "Colors", "Size", "Gender", "Timestamp"}, names)

	assert.Equal(t, "T-shirt 2", fields[0].Value)
	assert.Nil(t, fields[1].Value)
	assert.Equal(t, "⭐ 3.9 / 5", fields[2].Value)
	assert.Nil(t, fields[5].Value)
	assert.Equal(t, "2024-05-17 09:03:07", fields[6].Value)
}
