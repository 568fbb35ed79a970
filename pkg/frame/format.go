package frame

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/ajitpratap0/tabula/pkg/index"
	stringpool "github.com/ajitpratap0/tabula/pkg/strings"
)

// FormatOptions controls text rendering
type FormatOptions struct {
	// MaxRows limits the printed rows; larger tables show their head and
	// tail. Zero prints every row.
	MaxRows int
	// Precision is the number of decimals for float cells
	Precision int
	// MaxWidth truncates wide cells. Zero disables truncation.
	MaxWidth int
}

// DefaultFormatOptions returns the options used by String
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{MaxRows: 60, Precision: 4, MaxWidth: 24}
}

// String renders the table with DefaultFormatOptions
func (t *Table) String() string {
	return t.Format(DefaultFormatOptions())
}

// Format renders the table as aligned text: a header of column labels, then
// one line per row led by its row label
func (t *Table) Format(opts FormatOptions) string {
	nrows, ncols := t.Shape()
	shown := visibleRows(nrows, opts.MaxRows)

	// cells[0] is the header; column 0 holds the row labels
	cells := make([][]string, 0, len(shown)+1)
	header := make([]string, ncols+1)
	for j, key := range t.Columns().Labels() {
		header[j+1] = opts.clip(index.Format(key))
	}
	cells = append(cells, header)

	matrix, err := t.store.Matrix(nil)
	if err != nil {
		return err.Error()
	}
	for _, i := range shown {
		line := make([]string, ncols+1)
		if i >= 0 {
			line[0] = opts.clip(index.Format(t.rows.At(i)))
			for j := 0; j < ncols; j++ {
				line[j+1] = opts.clip(opts.cell(matrix.At(i, j)))
			}
		} else {
			for j := range line {
				line[j] = "..."
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, ncols+1)
	total := 0
	for _, line := range cells {
		for j, c := range line {
			if n := utf8.RuneCountInString(c); n > widths[j] {
				widths[j] = n
			}
		}
	}
	for _, w := range widths {
		total += (w + 2) * len(cells)
	}

	size := stringpool.SizeFor(total)
	b := stringpool.GetBuilder(size)
	defer stringpool.PutBuilder(b, size)

	for _, line := range cells {
		b.WriteString(stringpool.PadRight(line[0], widths[0]))
		for j := 1; j < len(line); j++ {
			b.WriteString("  ")
			b.WriteString(stringpool.PadLeft(line[j], widths[j]))
		}
		b.WriteString("\n")
	}
	if len(shown) < nrows {
		b.WriteString(stringpool.Sprintf("[%d rows x %d columns]\n", nrows, ncols))
	}
	return b.String()
}

// visibleRows lists the row positions to print, with -1 marking the elided
// middle
func visibleRows(n, limit int) []int {
	if limit <= 0 || n <= limit {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	head := (limit + 1) / 2
	tail := limit - head
	out := make([]int, 0, limit+1)
	for i := 0; i < head; i++ {
		out = append(out, i)
	}
	out = append(out, -1)
	for i := n - tail; i < n; i++ {
		out = append(out, i)
	}
	return out
}

func (o FormatOptions) cell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', o.Precision, 64)
	case nil:
		return "NaN"
	default:
		return index.Format(x)
	}
}

func (o FormatOptions) clip(s string) string {
	if o.MaxWidth <= 0 {
		return s
	}
	return stringpool.Truncate(s, o.MaxWidth)
}
