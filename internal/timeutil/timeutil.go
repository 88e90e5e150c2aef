package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"streamsplit/internal/domain/split"
)

var (
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	hoursUnit   = regexp.MustCompile(`(\d+)\s*h`)
	minutesUnit = regexp.MustCompile(`(\d+)\s*m`)
	secondsUnit = regexp.MustCompile(`(\d+)\s*s`)
)

// ParseTimeExpression converts a human time expression into seconds.
// Accepted forms, tried in order: plain digits ("120"), unit composites
// ("1h30m", "90s"), and colon-delimited "HH:MM:SS" or "MM:SS".
func ParseTimeExpression(input string) (float64, error) {
	expr := strings.ToLower(strings.TrimSpace(input))
	if expr == "" {
		return 0, split.Errorf(split.KindInvalidTimeFormat, "empty time expression")
	}

	if digitsOnly.MatchString(expr) {
		value, err := strconv.ParseFloat(expr, 64)
		if err != nil {
			return 0, split.Errorf(split.KindInvalidTimeFormat, "unable to parse %q", input)
		}
		return value, nil
	}

	total := 0
	if m := hoursUnit.FindStringSubmatch(expr); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, split.Errorf(split.KindInvalidTimeFormat, "unable to parse %q", input)
		}
		total += hours * 3600
	}
	if m := minutesUnit.FindStringSubmatch(expr); m != nil {
		minutes, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, split.Errorf(split.KindInvalidTimeFormat, "unable to parse %q", input)
		}
		total += minutes * 60
	}
	if m := secondsUnit.FindStringSubmatch(expr); m != nil {
		seconds, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, split.Errorf(split.KindInvalidTimeFormat, "unable to parse %q", input)
		}
		total += seconds
	}
	if total > 0 {
		return float64(total), nil
	}

	parts := strings.Split(expr, ":")
	switch len(parts) {
	case 3:
		hours, err1 := strconv.Atoi(parts[0])
		minutes, err2 := strconv.Atoi(parts[1])
		seconds, err3 := strconv.Atoi(parts[2])
		if err1 == nil && err2 == nil && err3 == nil {
			return float64(hours*3600 + minutes*60 + seconds), nil
		}
	case 2:
		minutes, err1 := strconv.Atoi(parts[0])
		seconds, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil {
			return float64(minutes*60 + seconds), nil
		}
	}

	return 0, split.Errorf(split.KindInvalidTimeFormat, "unable to parse time expression %q", input)
}

// FormatDuration renders seconds as "30s", "1m 30s" or "1h 1m 1s".
// Fractional seconds are floored away.
func FormatDuration(seconds float64) string {
	total := int(math.Floor(seconds))
	if total < 0 {
		total = 0
	}

	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*]`)
	separatorRuns  = regexp.MustCompile(`[\s_]+`)
	maxNameDefault = 100
)

// SanitizeFilename makes a string safe to use as a file name across
// operating systems. Whitespace/underscore runs collapse into a single
// underscore, invalid characters become underscores (one apiece, so
// "a<>b" keeps both), and accented letters decompose to their ASCII
// base before everything else non-ASCII is dropped ("café" keeps its
// "e"). maxLength <= 0 means the default of 100.
func SanitizeFilename(name string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = maxNameDefault
	}

	out := separatorRuns.ReplaceAllString(name, "_")
	out = invalidChars.ReplaceAllString(out, "_")

	var ascii strings.Builder
	for _, r := range norm.NFKD.String(out) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r < 128 {
			ascii.WriteRune(r)
		}
	}
	out = ascii.String()

	out = strings.Trim(out, ". _")

	if out == "" {
		return "unnamed"
	}
	if len(out) > maxLength {
		out = out[:maxLength]
	}
	return out
}
