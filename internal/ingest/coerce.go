package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// affirmative is the fixed set of flag spellings treated as "yes" across all
// boolean-like columns, compared case-insensitively.
var affirmative = map[string]bool{
	"si":         true,
	"yes":        true,
	"true":       true,
	"completado": true,
}

// isAffirmative reports whether a raw flag value belongs to the affirmative
// set.
func isAffirmative(v string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(v))]
}

// parsePercent coerces a cell that may hold "85", "85%", "0.85" or garbage
// into a float. Unparseable values degrade to zero, never to an error.
func parsePercent(v string) float64 {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseScore coerces a score cell. Besides the percent forms it accepts the
// "8/10" style by taking the part before the slash.
func parseScore(v string) float64 {
	clean := strings.ReplaceAll(v, "%", "")
	if i := strings.Index(clean, "/"); i >= 0 {
		clean = clean[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil {
		return 0
	}
	return f
}

var (
	durationHours   = regexp.MustCompile(`(\d+)\s*h`)
	durationMinutes = regexp.MustCompile(`(\d+)\s*m`)
)

// parseDuration converts a duration cell into hours. It accepts "2h 30m"
// style tokens (hours plus minutes/60) or, when no token is present, a bare
// number taken as hours. A bare "90" therefore means 90 hours, not minutes.
func parseDuration(v string) float64 {
	str := strings.ToLower(strings.TrimSpace(v))
	if str == "" {
		return 0
	}

	var total float64
	if m := durationHours.FindStringSubmatch(str); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += float64(h)
	}
	if m := durationMinutes.FindStringSubmatch(str); m != nil {
		min, _ := strconv.Atoi(m[1])
		total += float64(min) / 60
	}

	if total == 0 {
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f
		}
	}
	return total
}

// parseIntOr coerces an integer cell, falling back to def on anything
// unparseable.
func parseIntOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// dateLayouts are the formats excelize renders date cells with, plus ISO.
// Anything else is passed through untouched; arbitrary date strings are not
// re-parsed.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// formatDate normalizes recognizable date values to an ISO calendar-date
// string truncated to the day. Unrecognized values keep their string form.
func formatDate(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
