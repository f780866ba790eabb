package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/fashion-etl/internal/models"
)

// Selectors locate the parts of a catalog page.
type Selectors struct {
	Card           string
	Title          string
	PriceContainer string
	Price          string
	FlatPrice      string
	Descriptor     string
	NextPage       string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Card:           "div.collection-card",
		Title:          "h3.product-title",
		PriceContainer: "div.price-container",
		Price:          "span.price",
		FlatPrice:      "p.price",
		Descriptor:     "p",
		NextPage:       "li.next",
	}
}

// CatalogParser extracts raw products from catalog listing pages.
type CatalogParser struct {
	selectors Selectors
	logger    *slog.Logger
	now       func() time.Time
}

func NewCatalogParser(logger *slog.Logger, selectors Selectors) *CatalogParser {
	return &CatalogParser{
		selectors: selectors,
		logger:    logger.With("component", "catalog_parser"),
		now:       time.Now,
	}
}

// ParseDocument parses raw page markup.
func (p *CatalogParser) ParseDocument(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ProductCards returns every product container of the page in document order.
func (p *CatalogParser) ProductCards(doc *goquery.Document) *goquery.Selection {
	return doc.Find(p.selectors.Card)
}

// HasNextPage reports whether the page carries a pagination affordance.
func (p *CatalogParser) HasNextPage(doc *goquery.Document) bool {
	return doc.Find(p.selectors.NextPage).Length() > 0
}

// ExtractProduct reads the raw fields of one product card. It never fails:
// a fault while reading the card yields a placeholder record.
func (p *CatalogParser) ExtractProduct(card *goquery.Selection) (product models.RawProduct) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("failed to extract product", "error", r)
			product = models.NewPlaceholder(p.now())
		}
	}()

	product.Title = models.String(p.extractTitle(card))
	product.Price = models.String(p.extractPrice(card))

	card.Find(p.selectors.Descriptor).Each(func(_ int, s *goquery.Selection) {
		label, value, ok := ParseDescriptor(strings.TrimSpace(s.Text()))
		if !ok {
			return
		}
		// Later fragments overwrite earlier ones.
		switch label {
		case LabelRating:
			product.Rating = models.String(value)
		case LabelColors:
			product.Colors = models.String(value)
		case LabelSize:
			product.Size = models.String(value)
		case LabelGender:
			product.Gender = models.String(value)
		}
	})

	product.Timestamp = p.now().Format(models.TimestampLayout)
	return product
}

func (p *CatalogParser) extractTitle(card *goquery.Selection) string {
	title := card.Find(p.selectors.Title).First()
	if title.Length() == 0 {
		return models.NotAvailable
	}
	return strings.TrimSpace(title.Text())
}

func (p *CatalogParser) extractPrice(card *goquery.Selection) string {
	container := card.Find(p.selectors.PriceContainer).First()
	if container.Length() > 0 {
		price := container.Find(p.selectors.Price).First()
		if price.Length() == 0 {
			return models.NotAvailable
		}
		return strings.TrimSpace(price.Text())
	}

	flat := card.Find(p.selectors.FlatPrice).First()
	if flat.Length() == 0 {
		return models.NotAvailable
	}
	return strings.TrimSpace(flat.Text())
}
