package types

import "time"

// Byte multiples used for rate conversion and display.
const (
	KB = float64(1024)
	MB = KB * KB
	GB = MB * KB
	TB = GB * KB
)

// Counters is a raw reading of cumulative byte counters.
type Counters struct {
	BytesSent     uint64
	BytesReceived uint64
}

// CounterSnapshot is one tick's reading, stamped with the time it was taken.
type CounterSnapshot struct {
	BytesSent     uint64
	BytesReceived uint64
	Timestamp     time.Time
}

// RateSample is the throughput derived for one tick. Timestamp is seconds
// since the sampler started; rates are in MB/s.
type RateSample struct {
	Timestamp    float64
	UploadRate   float64
	DownloadRate float64
}

// RunningTotals accumulates rate samples. TotalUpload and TotalDownload are
// the sum of sampled rates; BytesSent and BytesReceived are the byte volume
// actually observed between non-reset snapshots.
type RunningTotals struct {
	TotalUpload   float64
	TotalDownload float64
	BytesSent     uint64
	BytesReceived uint64
}

// Resets counts detected counter resets per direction.
type Resets struct {
	Upload   uint64
	Download uint64
}

// Frame is what renderers receive once per tick. Err is set when the tick
// could not produce a new sample; the other fields then hold the last state.
type Frame struct {
	Time      time.Time
	Totals    RunningTotals
	Latest    RateSample
	Window    []RateSample
	Resets    Resets
	Anomalies uint64
	Err       error
}
