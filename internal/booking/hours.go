package booking

import "regexp"

// Operating hours arrive as free-form text ("09:00 - 17:00", "9:00–17:30",
// "by appointment"). We extract two clock tokens around a dash-like
// separator; anything else means the business has not declared a window
// and bookings are accepted at any time.
var hoursPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*[-–—]\s*(\d{1,2}:\d{2})`)

type Window struct {
	Open  string
	Close string
}

// ParseOperatingHours extracts an open-close window from text. ok is
// false when no window can be found; callers must then treat the
// business as unconstrained rather than reject the booking.
func ParseOperatingHours(text string) (Window, bool) {
	match := hoursPattern.FindStringSubmatch(text)

	if match == nil {
		return Window{}, false
	}

	return Window{
		Open:  NormalizeClock(match[1]),
		Close: NormalizeClock(match[2]),
	}, true
}

// NormalizeClock zero-pads an H:MM token to HH:MM. Zero-padded HH:MM
// strings sort identically to their time-of-day order, which is what
// makes the lexical comparison in ValidateTime sound.
func NormalizeClock(t string) string {
	if len(t) == 4 { // H:MM
		return "0" + t
	}
	return t
}

// ValidateTime reports whether t falls inside the window, inclusive at
// both ends. All three values must be normalized HH:MM strings.
func ValidateTime(t string, w Window) bool {
	t = NormalizeClock(t)
	return w.Open <= t && t <= w.Close
}

// clockPattern accepts exactly the shapes NormalizeClock handles.
var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// IsClock reports whether s is an H:MM or HH:MM token.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}
