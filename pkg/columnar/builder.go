package columnar

import (
	"sort"
	"sync"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Builder accumulates row-oriented records into columns. Column types are
// inferred from the first non-null value; a column that later receives an
// incompatible value is widened to float or object instead of failing.
type Builder struct {
	mu       sync.RWMutex
	columns  map[string]Column
	order    []string
	rowCount int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		columns: make(map[string]Column),
	}
}

// AddColumn declares a column with a fixed starting type
func (b *Builder) AddColumn(name string, colType ColumnType) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.columns[name]; exists {
		return errors.Newf(errors.ErrorTypeDuplicateLabel, "column %q already exists", name)
	}
	b.columns[name] = padNulls(createColumn(colType), b.rowCount)
	b.order = append(b.order, name)
	return nil
}

// AppendRow adds one record. Columns absent from the record get null.
func (b *Builder) AppendRow(row map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var added []string
	for name := range row {
		if _, exists := b.columns[name]; !exists {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		b.columns[name] = b.backfilled(row[name])
		b.order = append(b.order, name)
	}

	for _, name := range b.order {
		value := row[name]
		col := b.columns[name]
		if err := col.Append(value); err != nil {
			widened := widen(col, value)
			if err := widened.Append(value); err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "widened column rejected value")
			}
			b.columns[name] = widened
		}
	}
	b.rowCount++
	return nil
}

// AppendBatch adds records in order
func (b *Builder) AppendBatch(rows []map[string]interface{}) error {
	for _, row := range rows {
		if err := b.AppendRow(row); err != nil {
			return err
		}
	}
	return nil
}

// backfilled creates a column for a name first seen after rowCount rows
func (b *Builder) backfilled(first interface{}) Column {
	col := createColumn(inferColumnType([]interface{}{first}))
	return padNulls(col, b.rowCount)
}

// padNulls appends n nulls to col, widening it when its type has no null
func padNulls(col Column, n int) Column {
	for i := 0; i < n; i++ {
		if err := col.Append(nil); err != nil {
			col = widen(col, nil)
			_ = col.Append(nil)
		}
	}
	return col
}

// widen returns a copy of col able to hold both its values and value
func widen(col Column, value interface{}) Column {
	values := ToObjects(col)
	values = append(values, value)
	target := inferColumnType(values)
	out := createColumn(target)
	for _, v := range values[:len(values)-1] {
		_ = out.Append(v)
	}
	return out
}

// Column returns the named column
func (b *Builder) Column(name string) (Column, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	col, ok := b.columns[name]
	return col, ok
}

// RowCount returns the number of rows appended
func (b *Builder) RowCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rowCount
}

// ColumnNames returns column names in first-seen order
func (b *Builder) ColumnNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}

// Columns returns the built columns keyed by name
func (b *Builder) Columns() map[string]Column {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Column, len(b.columns))
	for k, v := range b.columns {
		out[k] = v
	}
	return out
}

// MemoryUsage returns the approximate bytes held by all columns
func (b *Builder) MemoryUsage() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total int64
	for _, col := range b.columns {
		total += col.MemoryUsage()
	}
	return total
}

// Clear removes all rows, keeping the declared columns
func (b *Builder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, col := range b.columns {
		col.Clear()
	}
	b.rowCount = 0
}
