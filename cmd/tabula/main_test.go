package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ajitpratap0/tabula/pkg/testutil"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Tabula v"+version)
}

func TestShowStdin(t *testing.T) {
	out, err := execute(t, `{"columns": [{"name": "a", "values": [1, 2]}]}`, "show", "-o", "ndjson", "-")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, `"a":2`)
}

func TestCombineScalarFlag(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "t.json", []byte(`{"columns": [{"name": "a", "values": [1, 2]}]}`))

	out, err := execute(t, "", "combine", path, "--scalar", "10", "--op", "mul", "-o", "ndjson")
	require.NoError(t, err)
	assert.Contains(t, out, `"a":20`)

	_, err = execute(t, "", "combine", path)
	assert.Error(t, err)
}

func TestReindexRequiresRows(t *testing.T) {
	_, err := execute(t, "", "reindex", "-")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "{}", "show", "-o", "xml", "-")
	assert.Error(t, err)
}

func TestTraceFlagExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out, errOut bytes.Buffer
	a := newApp()
	root := a.rootCommand()
	root.SetArgs([]string{"show", "--trace", "-o", "json", "-"})
	root.SetIn(strings.NewReader(`{"columns": [{"name": "a", "values": [1]}]}`))
	root.SetOut(&out)
	root.SetErr(&errOut)

	require.NoError(t, root.Execute())
	a.finish()

	assert.Contains(t, out.String(), `"columns"`)
	assert.Contains(t, errOut.String(), `"Name":"show"`)
}
