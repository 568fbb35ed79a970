// Package testutil provides testing utilities for tabula
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tabula/pkg/logger"
)

// NaN is the float null sentinel, spelled as a value for table literals
var NaN = math.NaN()

// TestLogger creates a test logger that writes to the test output and
// installs it as the global logger until the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l := zaptest.NewLogger(t)
	install(t, l)
	return l
}

// ObserveLogs installs an in-memory global logger recording entries at or
// above level and returns the recorded entries.
func ObserveLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	install(t, zap.New(core))
	return logs
}

func install(t *testing.T, l *zap.Logger) {
	prev := logger.Get()
	logger.Set(l)
	t.Cleanup(func() { logger.Set(prev) })
}

// AssertFloatsEqual compares float slices treating NaN as equal to NaN.
func AssertFloatsEqual(t assert.TestingT, expected, actual []float64, msgAndArgs ...interface{}) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	ok := true
	for i := range expected {
		e, a := expected[i], actual[i]
		switch {
		case math.IsNaN(e):
			ok = assert.Truef(t, math.IsNaN(a), "position %d: expected NaN, got %v", i, a) && ok
		case math.IsInf(e, 0):
			ok = assert.Equalf(t, e, a, "position %d", i) && ok
		default:
			ok = assert.InDeltaf(t, e, a, 1e-9, "position %d", i) && ok
		}
	}
	return ok
}

// Suite is a testify suite with a per-suite temporary directory
type Suite struct {
	suite.Suite
	tempDir string
}

// SetupSuite creates the temporary directory
func (s *Suite) SetupSuite() {
	s.tempDir = s.T().TempDir()
}

// TempDir returns the temporary directory path
func (s *Suite) TempDir() string {
	return s.tempDir
}

// CreateTempFile creates a file with content in the suite's directory
func (s *Suite) CreateTempFile(name string, content []byte) string {
	return WriteFile(s.T(), s.tempDir, name, content)
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}
