package media

// Info holds the probed facts about one media file. Derived once per
// file and never mutated afterwards.
type Info struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	FrameRate float64
	Bitrate   int64
	Format    string
}

// Resolution returns the (width, height) pair used for compatibility
// comparisons.
func (i Info) Resolution() [2]int { return [2]int{i.Width, i.Height} }
