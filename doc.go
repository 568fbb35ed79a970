// Package tabula provides labelled two-dimensional tables with automatic
// alignment on row and column labels.
//
// A table pairs a row index with column storage that is segregated by dtype:
// every numeric column shares one homogeneous float64 block tagged with a
// dtype (float64, int64 or bool) and every other column lives in a single
// object block. Binary operations align both operands on the union of their
// labels before computing, so cells present on only one side come out null.
//
// # Architecture
//
//  1. Labels: pkg/index normalizes labels (integers to int64, floats to
//     float64, times without monotonic readings) and orders them within
//     comparable classes. Set operations are sorted whenever every label is
//     orderable.
//
//  2. Alignment: pkg/align turns a source and a target index into an Indexer
//     of source positions plus a validity mask, optionally filling misses by
//     padding or backfilling on monotonic indexes.
//
//  3. Storage: pkg/block holds dense row-major arrays and typed blocks;
//     pkg/blockstore keeps the logical column order, routes insertions to the
//     right block and realigns blocks along either axis, promoting integer
//     and boolean dtypes to float64 when nulls are introduced.
//
//  4. Tables: pkg/frame exposes Table with combine, reindex, shift,
//     cumulative sum, transpose, cross-section, fill, join, Arrow
//     interchange and Parquet and Avro files.
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/tabula/pkg/frame"
//	    "github.com/ajitpratap0/tabula/pkg/index"
//	)
//
//	a, _ := frame.New(map[index.Label]interface{}{"x": []float64{1, 2}},
//	    frame.WithIndex(index.MustNew("r0", "r1")))
//	b, _ := frame.New(map[index.Label]interface{}{"x": []float64{10, 20}},
//	    frame.WithIndex(index.MustNew("r1", "r2")))
//
//	sum, _ := a.Combine(b, frame.Add)
//	fmt.Print(sum)
//
// # Key Packages
//
//	pkg/index       - Labels, Index and label offsets
//	pkg/align       - Fill methods and indexers
//	pkg/columnar    - Typed columns, row-to-column builder
//	pkg/block       - Dense arrays and dtype-tagged blocks
//	pkg/blockstore  - Segregated column storage
//	pkg/frame       - The Table type
//	pkg/config      - Engine configuration
//	pkg/errors      - Structured error handling
//	pkg/logger      - Structured logging
//	pkg/metrics     - Prometheus metrics
//	pkg/tracing     - OpenTelemetry spans
//	pkg/compression - Compressed streams picked by file extension
//	pkg/mmap        - Memory-mapped input files
//	internal/cli    - JSON documents and the command engine
//
// # Command Line
//
//	tabula show table.json
//	tabula combine left.json right.json --op sub -o json
//	tabula reindex table.json --rows 0,1,2,3 --method pad
//	tabula shift table.json --periods 2 --freq 1D
//	tabula convert table.json table.parquet
//	tabula show --trace events.ndjson.zst
//
// Configuration is read from a YAML file (--config), TABULA_* environment
// variables and flags, in increasing precedence. ${VAR_NAME} references in
// the file are substituted from the environment.
package tabula
