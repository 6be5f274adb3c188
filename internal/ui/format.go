package ui

import (
	"fmt"

	"github.com/nozo-moto/netspeed/pkg/types"
)

var byteUnits = []struct {
	size float64
	name string
}{
	{types.TB, "TB"},
	{types.GB, "GB"},
	{types.MB, "MB"},
	{types.KB, "KB"},
}

// formatBytes renders a raw byte count, used for the observed volume line.
func formatBytes(n uint64) string {
	v := float64(n)
	for _, u := range byteUnits {
		if v >= u.size {
			return fmt.Sprintf("%.1f %s", v/u.size, u.name)
		}
	}
	return fmt.Sprintf("%d B", n)
}

// formatVolume renders a megabyte figure with the largest fitting unit.
func formatVolume(mb float64) string {
	switch bytes := mb * types.MB; {
	case bytes >= types.TB:
		return fmt.Sprintf("%.2f TB", bytes/types.TB)
	case bytes >= types.GB:
		return fmt.Sprintf("%.2f GB", bytes/types.GB)
	default:
		return fmt.Sprintf("%.2f MB", mb)
	}
}

func totalUploadLabel(t types.RunningTotals) string {
	return fmt.Sprintf("Total Upload: %s", formatVolume(t.TotalUpload))
}

func totalDownloadLabel(t types.RunningTotals) string {
	return fmt.Sprintf("Total Download: %s", formatVolume(t.TotalDownload))
}

func uploadSpeedLabel(s types.RateSample) string {
	return fmt.Sprintf("Upload Speed: %.2f MB/s", s.UploadRate)
}

func downloadSpeedLabel(s types.RateSample) string {
	return fmt.Sprintf("Download Speed: %.2f MB/s", s.DownloadRate)
}
