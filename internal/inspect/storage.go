package inspect

import (
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/disk"
)

// Usage describes the volume holding a path.
type Usage struct {
	Path        string  `json:"path"`
	Filesystem  string  `json:"filesystem,omitempty"`
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	TotalGB     float64 `json:"total_gb"`
	UsedGB      float64 `json:"used_gb"`
	FreeGB      float64 `json:"free_gb"`
	UsedPercent float64 `json:"used_percent"`
}

var diskUsage = disk.Usage

// Storage reports usage for the volume that holds path.
func Storage(path string) (*Usage, error) {
	st, err := diskUsage(path)
	if err != nil {
		return nil, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	return &Usage{
		Path:        path,
		Filesystem:  st.Fstype,
		TotalBytes:  st.Total,
		UsedBytes:   st.Used,
		FreeBytes:   st.Free,
		TotalGB:     toGB(st.Total),
		UsedGB:      toGB(st.Used),
		FreeGB:      toGB(st.Free),
		UsedPercent: round2(st.UsedPercent),
	}, nil
}

func toGB(b uint64) float64 {
	return round2(float64(b) / (1 << 30))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
