package split

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNamingPattern is applied when a config does not set one.
const DefaultNamingPattern = "{title}_part{index}_{date}"

// Template renders per-segment output names. {title} and {date} are
// resolved once when the template is built; {index} is substituted per
// segment, zero-padded to two digits.
type Template struct {
	pattern string
}

// NewTemplate resolves the run-scoped tokens of pattern. title should
// already be sanitized; now supplies the {date} value as YYYYMMDD.
func NewTemplate(pattern, title string, now time.Time) Template {
	if pattern == "" {
		pattern = DefaultNamingPattern
	}
	resolved := strings.ReplaceAll(pattern, "{title}", title)
	resolved = strings.ReplaceAll(resolved, "{date}", now.Format("20060102"))
	return Template{pattern: resolved}
}

// Render substitutes the segment index and returns the file name stem.
func (t Template) Render(index int) string {
	name := fmt.Sprintf("%02d", index)
	out := strings.ReplaceAll(t.pattern, "{index:02d}", name)
	return strings.ReplaceAll(out, "{index}", name)
}
