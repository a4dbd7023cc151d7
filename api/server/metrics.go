// metrics.go - Metrics collection for the ledger node
package server

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
)

// NodeMetrics holds process and chain health metrics.
type NodeMetrics struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	BlockCount     int     `json:"block_count"`
	ChainSizeBytes int64   `json:"chain_size_bytes"`
	CPULoadPercent float64 `json:"cpu_load_percent"`
	MemoryMB       float64 `json:"memory_mb"`
	DiskFreeMB     float64 `json:"disk_free_mb"`
	LastBlockTime  string  `json:"last_block_time,omitempty"`
	ChainReadable  bool    `json:"chain_readable"`
}

// GetNodeMetrics samples the process and reloads the chain.
func (s *Server) GetNodeMetrics() NodeMetrics {
	m := NodeMetrics{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.MemoryMB = float64(mem.Alloc) / (1024 * 1024)

	if usage, err := disk.Usage(s.cfg.Data.Dir); err == nil {
		m.DiskFreeMB = float64(usage.Free) / (1024 * 1024)
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		m.CPULoadPercent = percents[0]
	}

	if err := s.ledger.Readable(); err != nil {
		s.log.WithError(err).Warn("metrics: chain artifact unreadable")
		return m
	}
	stats, err := s.ledger.GetChainStats()
	if err != nil {
		s.log.WithError(err).Warn("metrics: chain unreadable")
		return m
	}
	m.ChainReadable = true
	m.BlockCount = stats.TotalBlocks
	m.ChainSizeBytes = stats.ChainSizeBytes
	if stats.LastTimestamp != nil {
		m.LastBlockTime = time.Unix(int64(*stats.LastTimestamp), 0).UTC().Format(time.RFC3339)
	}
	return m
}
