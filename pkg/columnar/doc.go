// Package columnar implements the labelled one-dimensional vectors that feed
// a table: typed columns for floats, integers, booleans, strings, timestamps
// and arbitrary boxed values.
//
// # Overview
//
// A Column may carry its own row Index. Index-bearing columns are aligned
// onto a table's rows by label; positional columns must already have the
// table's length.
//
// The package provides:
//   - Typed column implementations with null-aware Append
//   - Type inference from boxed values (FromValues, From, FromLabelMap)
//   - Explicit casts to float64 and boxed storage, including a try-cast
//     that reports failure instead of raising
//   - A row-oriented Builder that accumulates records into columns
//
// # Usage Example
//
//	price := columnar.NewFloatColumn([]float64{1.5, 2.5})
//	labelled, err := columnar.WithIndex(price, index.MustNew("a", "b"))
//
//	mixed := columnar.FromValues([]interface{}{"x", 1, nil})
//	mixed.Type() // ColumnTypeObject
//
// # Nulls
//
// Float columns use NaN as their null; object columns use nil. Integer,
// boolean, string and timestamp columns cannot hold nulls, so operations that
// introduce them (Take with sentinel positions) widen the result to a float
// or object column.
package columnar
