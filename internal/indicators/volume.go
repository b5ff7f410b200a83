package indicators

// VolumeAnalysis holds the relative-volume statistics of spec.md §4.1.
type VolumeAnalysis struct {
	SMA             float64
	RelativeVolume  float64
	IsHighVolume    bool // rvol >= 1.5
	IsAboveAverage  bool // rvol >= 1.0
}

// AnalyzeVolume computes SMA-of-volume over maPeriod (default 20) and the
// current bar's relative volume against it.
func AnalyzeVolume(volumes []float64, maPeriod int) VolumeAnalysis {
	if maPeriod <= 0 || len(volumes) < maPeriod {
		return VolumeAnalysis{}
	}
	window := volumes[len(volumes)-maPeriod:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	sma := sum / float64(maPeriod)
	if sma <= 0 {
		return VolumeAnalysis{SMA: sma}
	}

	current := volumes[len(volumes)-1]
	rvol := current / sma
	return VolumeAnalysis{
		SMA:            sma,
		RelativeVolume: rvol,
		IsHighVolume:   rvol >= 1.5,
		IsAboveAverage: rvol >= 1.0,
	}
}

// DefaultVolumeAnalysis runs AnalyzeVolume with the standard 20-period
// moving average.
func DefaultVolumeAnalysis(volumes []float64) VolumeAnalysis {
	return AnalyzeVolume(volumes, 20)
}
