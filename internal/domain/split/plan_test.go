package split

import (
	"math"
	"testing"
)

func TestBuildPlan_CoversDuration(t *testing.T) {
	cases := []struct {
		total float64
		max   float64
		count int
	}{
		{3600, 1200, 3},
		{3700, 1200, 4},
		{61, 60, 2},
		{7200, 7200, 1},
		{100, 60, 2},
		{5400.5, 1200, 5},
	}

	for _, tc := range cases {
		plan, err := BuildPlan(tc.total, tc.max)
		if err != nil {
			t.Fatalf("BuildPlan(%v, %v): unexpected error: %v", tc.total, tc.max, err)
		}
		if plan.SegmentCount() != tc.count {
			t.Fatalf("BuildPlan(%v, %v): expected %d windows, got %d", tc.total, tc.max, tc.count, plan.SegmentCount())
		}

		var sum float64
		for i, w := range plan.Windows {
			if w.Index != i+1 {
				t.Fatalf("window %d has index %d", i, w.Index)
			}
			if w.Duration <= 0 || w.Duration > tc.max {
				t.Fatalf("window %d duration %v out of (0, %v]", w.Index, w.Duration, tc.max)
			}
			if i > 0 && math.Abs(w.Start-plan.Windows[i-1].End()) > 1e-9 {
				t.Fatalf("window %d is not contiguous: start %v, previous end %v", w.Index, w.Start, plan.Windows[i-1].End())
			}
			sum += w.Duration
		}
		if math.Abs(sum-tc.total) > 1e-9 {
			t.Fatalf("BuildPlan(%v, %v): durations sum to %v", tc.total, tc.max, sum)
		}
	}
}

func TestBuildPlan_ExactMultipleHasNoEmptyTail(t *testing.T) {
	plan, err := BuildPlan(2400, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.SegmentCount() != 2 {
		t.Fatalf("expected 2 windows for exact multiple, got %d", plan.SegmentCount())
	}
	last := plan.Windows[len(plan.Windows)-1]
	if last.Duration != 1200 {
		t.Fatalf("expected full final window, got duration %v", last.Duration)
	}
}

func TestBuildPlan_RejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		total float64
		max   float64
	}{
		{0, 1200},
		{-10, 1200},
		{3600, 59},
		{3600, 7201},
	}
	for _, tc := range cases {
		if _, err := BuildPlan(tc.total, tc.max); err == nil {
			t.Fatalf("BuildPlan(%v, %v): expected error", tc.total, tc.max)
		} else if KindOf(err) != KindConfigValidation {
			t.Fatalf("BuildPlan(%v, %v): expected config_validation kind, got %v", tc.total, tc.max, err)
		}
	}
}
