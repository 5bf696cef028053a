package telemetry_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perawallet/pera-hdwallet/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestDumpMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)
	metrics.Calls.WithLabelValues("sign_data", "ok").Inc()

	path := filepath.Join(t.TempDir(), "stats")
	require.NoError(t, telemetry.DumpMetrics(reg, path))
	require.NoError(t, telemetry.DumpMetrics(reg, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(content), "hdwallet_sdk_calls_total"))
}
