package registry

import (
	"context"

	"github.com/okian/avalia/internal/adapters/repository"
	"github.com/okian/avalia/internal/domain/filter"
	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/internal/domain/validation"
	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// columnSource exposes two table columns to a filter.View.
type columnSource struct {
	table          *repository.Table
	nameColumn     int
	categoryColumn int
}

func (s columnSource) Len() int { return s.table.Len() }

func (s columnSource) FilterFields(i int) (string, string) {
	return s.table.Field(i, s.nameColumn), s.table.Field(i, s.categoryColumn)
}

// base holds what both registries share: the table, its file and the
// filtered view over it.
type base struct {
	table *repository.Table
	path  string
	view  *filter.View
	log   logger.Logger
}

func newBase(schema repository.Schema, path string, nameColumn, categoryColumn int, o options) base {
	table := repository.NewTable(schema, repository.WithLogger(o.log))
	return base{
		table: table,
		path:  path,
		view:  filter.NewView(columnSource{table: table, nameColumn: nameColumn, categoryColumn: categoryColumn}),
		log:   o.log.Named(schema.Name),
	}
}

// Load replaces the records with the file contents and refreshes the view.
func (b *base) Load(ctx context.Context) error {
	if err := b.table.Load(ctx, b.path); err != nil {
		return err
	}
	b.view.Refresh()
	return nil
}

// Save writes every record to the backing file.
func (b *base) Save(ctx context.Context) error {
	return b.table.Save(ctx, b.path)
}

// Path returns the backing file.
func (b *base) Path() string { return b.path }

// Table exposes the underlying rows for export.
func (b *base) Table() *repository.Table { return b.table }

// Len returns the total number of records.
func (b *base) Len() int { return b.table.Len() }

// NextID returns the id the next record will receive.
func (b *base) NextID() int { return b.table.NextID() }

// SetFilter replaces both filter terms. The category option "Todos"
// selects every record.
func (b *base) SetFilter(name, category string) {
	b.view.SetName(name)
	b.view.SetCategory(model.KindFilter(category))
}

// Filter returns the current filter terms.
func (b *base) Filter() (name, category string) { return b.view.Terms() }

// VisibleCount returns the number of records passing the filter.
func (b *base) VisibleCount() int { return b.view.Count() }

// VisibleIndices returns the record indices passing the filter.
func (b *base) VisibleIndices() []int { return b.view.Indices() }

// SourceIndex maps a visible row to its record index.
func (b *base) SourceIndex(row int) (int, bool) { return b.view.SourceIndex(row) }

// IndexOf returns the record index for id, or -1.
func (b *base) IndexOf(id int) int { return b.table.IndexOf(id) }

// Remove deletes the record at index. The caller persists with Save.
func (b *base) Remove(index int) error {
	if err := b.table.RemoveAt(index); err != nil {
		return err
	}
	b.view.Refresh()
	return nil
}

func recordFailures(entity string, errs validation.Errors) {
	for _, fe := range errs {
		metrics.RecordValidationFailure(entity, fe.Field)
	}
}
