package split

// TranscodeSpec describes one segment extraction handed to the
// external transcoder.
type TranscodeSpec struct {
	InputPath  string
	Start      float64
	Duration   float64
	OutputPath string

	Codec   string
	Preset  string
	CRF     int
	Threads int
}

// ConcatManifest is the ordered list of files stitched into one output:
// optional intro, the body segment, optional outro. Built fresh per
// segment, never shared.
type ConcatManifest struct {
	Paths  []string
	Output string
}

// NewConcatManifest assembles the ordered concat list for one segment.
func NewConcatManifest(intro, segment, outro, output string) ConcatManifest {
	paths := make([]string, 0, 3)
	if intro != "" {
		paths = append(paths, intro)
	}
	paths = append(paths, segment)
	if outro != "" {
		paths = append(paths, outro)
	}
	return ConcatManifest{Paths: paths, Output: output}
}
