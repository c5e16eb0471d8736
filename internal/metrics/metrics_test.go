package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.APICall("files.list", "ok")
	m.APICall("files.list", "ok")
	m.APICall("files.list", "transient")
	m.APIRetry("files.list")
	m.ItemDiscovered("folder")
	m.FolderListed()
	m.Placement("move")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("files.list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRetries.WithLabelValues("files.list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.foldersListed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.placements.WithLabelValues("move")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.APICall("files.get", "ok")
	m.Placement("copy")
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Placement("copy")

	path := filepath.Join(t.TempDir(), "gxcopy.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `gxcopy_placements_total{action="copy"} 1`), string(data))
}
