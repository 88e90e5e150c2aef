package split

import "math"

// SegmentWindow is one bounded slice of the source recording.
// Index is 1-based; Start and Duration are seconds.
type SegmentWindow struct {
	Index    int
	Start    float64
	Duration float64
}

// End returns the exclusive end offset of the window.
func (w SegmentWindow) End() float64 { return w.Start + w.Duration }

// Plan is the ordered set of windows covering a source file.
type Plan struct {
	TotalDuration float64
	MaxSegment    float64
	Windows       []SegmentWindow
}

// SegmentCount returns the number of planned windows.
func (p Plan) SegmentCount() int { return len(p.Windows) }

// BuildPlan partitions totalDuration into contiguous windows of at most
// maxSegment seconds. The final window carries the remainder; an exact
// multiple produces no trailing zero-length window.
func BuildPlan(totalDuration, maxSegment float64) (Plan, error) {
	if totalDuration <= 0 {
		return Plan{}, Errorf(KindConfigValidation, "source duration must be positive, got %.3f", totalDuration)
	}
	if maxSegment < MinSegmentSeconds || maxSegment > MaxSegmentSeconds {
		return Plan{}, Errorf(KindConfigValidation, "max segment length must be between %d and %d seconds, got %.0f",
			MinSegmentSeconds, MaxSegmentSeconds, maxSegment)
	}

	count := int(math.Floor(totalDuration / maxSegment))
	if remainder := math.Mod(totalDuration, maxSegment); remainder > 0 {
		count++
	}

	windows := make([]SegmentWindow, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * maxSegment
		duration := maxSegment
		if i == count-1 {
			duration = totalDuration - start
		}
		windows = append(windows, SegmentWindow{Index: i + 1, Start: start, Duration: duration})
	}

	return Plan{TotalDuration: totalDuration, MaxSegment: maxSegment, Windows: windows}, nil
}

// Segment length bounds shared by the planner and config validation.
const (
	MinSegmentSeconds = 60
	MaxSegmentSeconds = 7200
)
