package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceMonitorSamples(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("process counters are only checked on linux and darwin")
	}
	m := newResourceMonitor()
	before, ok := m.sample()
	require.True(t, ok)
	assert.Positive(t, before.RSS)

	fields := m.fields(before, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "rss_bytes", fields[0].Key)
	assert.Equal(t, "cpu_time", fields[1].Key)
}

func TestResourceMonitorUnavailable(t *testing.T) {
	var m *resourceMonitor
	_, ok := m.sample()
	assert.False(t, ok)
	assert.Nil(t, m.fields(resourceUsage{}, false))

	empty := &resourceMonitor{}
	_, ok = empty.sample()
	assert.False(t, ok)
}
