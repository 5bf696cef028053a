package telemetry

import (
	"bufio"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
)

// DumpMetrics appends every metric family collected by gatherer to the file
// at path, one family per line.
func DumpMetrics(gatherer prometheus.Gatherer, path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	metricFamilies, err := gatherer.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, v := range metricFamilies {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// PrintMemoryStatistics logs memory usage of the process at debug level.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Debugf(
		"heap allocated: %.3fMB, allocated objects: %v, freed objects: %v, "+
			"goroutines: %v",
		float64(memStats.HeapAlloc)/MEGABYTE,
		memStats.Mallocs,
		memStats.Frees,
		runtime.NumGoroutine(),
	)
}
