package present

import (
	"fmt"
	"strconv"
	"time"
)

// TimeAgo renders a compact relative time ("just now", "5m ago", "2h ago", "3d ago").
// A zero time renders as empty.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// FormatCount renders n with comma thousands separators
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}

	if len(s) > 3 {
		out := make([]byte, 0, len(s)+len(s)/3)
		lead := len(s) % 3
		if lead == 0 {
			lead = 3
		}
		out = append(out, s[:lead]...)
		for i := lead; i < len(s); i += 3 {
			out = append(out, ',')
			out = append(out, s[i:i+3]...)
		}
		s = string(out)
	}

	if neg {
		return "-" + s
	}
	return s
}

// FormatSigned renders a change with an explicit plus sign for positive values
func FormatSigned(v float64, suffix string) string {
	if v > 0 {
		return fmt.Sprintf("+%g%s", v, suffix)
	}
	return fmt.Sprintf("%g%s", v, suffix)
}
