// Package transform cleans a raw product table into typed, validated columns.
package transform

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/models"
)

// Stage mutates the table it is given. A stage runs on a private copy, so a
// failing stage leaves the pipeline's table untouched.
type Stage struct {
	Name string
	Run  func(t *dataset.Table) error
	// Critical stages abort the whole pipeline when they fail.
	Critical bool
}

type Pipeline struct {
	exchangeRate float64
	stages       []Stage
	logger       *slog.Logger
}

func NewPipeline(logger *slog.Logger, exchangeRate float64) *Pipeline {
	p := &Pipeline{
		exchangeRate: exchangeRate,
		logger:       logger.With("component", "transform"),
	}
	p.stages = []Stage{
		{Name: "filter_invalid", Run: p.filterInvalid, Critical: true},
		{Name: "price", Run: p.normalizePrice},
		{Name: "rating", Run: p.normalizeRating},
		{Name: "colors", Run: p.normalizeColors},
		{Name: "size", Run: p.normalizeSize},
		{Name: "gender", Run: p.normalizeGender},
		{Name: "deduplicate", Run: p.deduplicate},
		{Name: "finalize_types", Run: p.finalizeTypes},
	}
	return p
}

// Run executes every stage in order and returns the cleaned table. It never
// fails; at worst the table is returned as it stood before a failing stage.
func (p *Pipeline) Run(t *dataset.Table) *dataset.Table {
	current := t
	for _, stage := range p.stages {
		next, err := runStage(stage, current)
		if err != nil {
			if stage.Critical {
				p.logger.Error("stage failed, aborting pipeline", "stage", stage.Name, "error", err)
				return current
			}
			p.logger.Error("stage failed, skipping", "stage", stage.Name, "error", err)
			continue
		}
		current = next
		p.logger.Debug("stage completed", "stage", stage.Name, "rows", current.Len())
	}
	return current
}

func runStage(stage Stage, t *dataset.Table) (out *dataset.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	work := t.Clone()
	if err := stage.Run(work); err != nil {
		return nil, err
	}
	return work, nil
}

func (p *Pipeline) present(t *dataset.Table, column string) bool {
	if t.Has(column) {
		return true
	}
	p.logger.Warn("column not found in data", "column", column)
	return false
}

func (p *Pipeline) filterInvalid(t *dataset.Table) error {
	for _, rule := range invalidValues {
		if !p.present(t, rule.column) {
			continue
		}
		before := t.Len()
		t.Filter(func(i int, _ dataset.Row) bool {
			return !matchesAny(t.Value(i, rule.column), rule.values)
		})
		if dropped := before - t.Len(); dropped > 0 {
			p.logger.Debug("dropped invalid rows", "column", rule.column, "rows", dropped)
		}
	}
	return nil
}

func matchesAny(v interface{}, values []interface{}) bool {
	for _, candidate := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

func (p *Pipeline) normalizePrice(t *dataset.Table) error {
	if !p.present(t, models.FieldPrice) {
		return nil
	}
	return t.Apply(models.FieldPrice, func(v interface{}) interface{} {
		price := ParsePrice(v)
		if price == nil {
			return nil
		}
		return *price * p.exchangeRate
	})
}

func (p *Pipeline) normalizeRating(t *dataset.Table) error {
	if !p.present(t, models.FieldRating) {
		return nil
	}
	err := t.Apply(models.FieldRating, func(v interface{}) interface{} {
		if f, ok := v.(float64); ok && f >= minRating && f <= maxRating {
			return f
		}
		if rating := CleanRating(v); rating != nil {
			return *rating
		}
		return nil
	})
	if err != nil {
		return err
	}
	dropNil(t, models.FieldRating)
	return nil
}

func (p *Pipeline) normalizeColors(t *dataset.Table) error {
	if !p.present(t, models.FieldColors) {
		return nil
	}
	err := t.Apply(models.FieldColors, func(v interface{}) interface{} {
		if n := ParseColors(v); n != nil {
			return *n
		}
		return nil
	})
	if err != nil {
		return err
	}
	dropNil(t, models.FieldColors)
	return nil
}

func (p *Pipeline) normalizeSize(t *dataset.Table) error {
	if !p.present(t, models.FieldSize) {
		return nil
	}
	err := t.Apply(models.FieldSize, func(v interface{}) interface{} {
		return StripLabel(sizeLabel, stringForm(v))
	})
	if err != nil {
		return err
	}
	t.Filter(func(i int, _ dataset.Row) bool {
		s, _ := t.Value(i, models.FieldSize).(string)
		return s != "" && !strings.EqualFold(s, "none")
	})
	return nil
}

func (p *Pipeline) normalizeGender(t *dataset.Table) error {
	if !p.present(t, models.FieldGender) {
		return nil
	}
	return t.Apply(models.FieldGender, func(v interface{}) interface{} {
		return StripLabel(genderLabel, stringForm(v))
	})
}

func (p *Pipeline) deduplicate(t *dataset.Table) error {
	seen := make(map[string]struct{}, t.Len())
	t.Filter(func(_ int, r dataset.Row) bool {
		key := dataset.RowKey(r)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return nil
}

func (p *Pipeline) finalizeTypes(t *dataset.Table) error {
	for _, column := range []string{models.FieldTitle, models.FieldGender} {
		if !t.Has(column) {
			continue
		}
		err := t.Apply(column, func(v interface{}) interface{} {
			if v == nil {
				return nil
			}
			return stringForm(v)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func dropNil(t *dataset.Table, column string) {
	t.Filter(func(i int, _ dataset.Row) bool {
		return t.Value(i, column) != nil
	})
}
