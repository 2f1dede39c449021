package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemMetricsConfig configures system-level metric collection.
type SystemMetricsConfig struct {
	// DiskPath is the mount point monitored for disk usage. Defaults to "/".
	DiskPath string
}

// RegisterSystemMetrics registers host-level gauges (CPU, memory, disk,
// load average) with the registry. Values are sampled lazily on each scrape
// via gopsutil; a sampling failure reports zero rather than failing the
// scrape.
//
// These gauges complement the Go runtime collectors: the runtime collectors
// describe the process, these describe the host it runs on.
func RegisterSystemMetrics(namespace string, registry *prometheus.Registry, cfg SystemMetricsConfig) {
	diskPath := cfg.DiskPath
	if diskPath == "" {
		diskPath = "/"
	}

	registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "system",
				Name:      "cpu_percent",
				Help:      "Host CPU utilization percentage.",
			},
			func() float64 {
				percents, err := cpu.Percent(0, false)
				if err != nil || len(percents) == 0 {
					return 0
				}
				return percents[0]
			},
		),

		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "system",
				Name:      "memory_used_bytes",
				Help:      "Host memory in use, in bytes.",
			},
			func() float64 {
				vm, err := mem.VirtualMemory()
				if err != nil {
					return 0
				}
				return float64(vm.Used)
			},
		),

		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "system",
				Name:      "memory_used_percent",
				Help:      "Host memory utilization percentage.",
			},
			func() float64 {
				vm, err := mem.VirtualMemory()
				if err != nil {
					return 0
				}
				return vm.UsedPercent
			},
		),

		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "system",
				Name:      "disk_used_percent",
				Help:      "Disk utilization percentage for the monitored path.",
			},
			func() float64 {
				usage, err := disk.Usage(diskPath)
				if err != nil {
					return 0
				}
				return usage.UsedPercent
			},
		),

		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "system",
				Name:      "load1",
				Help:      "Host load average over one minute.",
			},
			func() float64 {
				avg, err := load.Avg()
				if err != nil {
					return 0
				}
				return avg.Load1
			},
		),
	)
}
