package booking

import "testing"

func TestParseOperatingHours(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantOpen  string
		wantClose string
		wantOK    bool
	}{
		{name: "padded with spaces", text: "09:00 - 17:00", wantOpen: "09:00", wantClose: "17:00", wantOK: true},
		{name: "unpadded open", text: "9:00-17:00", wantOpen: "09:00", wantClose: "17:00", wantOK: true},
		{name: "en dash", text: "9:00 – 17:30", wantOpen: "09:00", wantClose: "17:30", wantOK: true},
		{name: "embedded in prose", text: "Open 10:00 - 18:00 weekdays", wantOpen: "10:00", wantClose: "18:00", wantOK: true},
		{name: "no window", text: "by appointment", wantOK: false},
		{name: "empty", text: "", wantOK: false},
		{name: "single time only", text: "opens at 9:00", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := ParseOperatingHours(tc.text)

			if ok != tc.wantOK {
				t.Fatalf("ParseOperatingHours(%q) ok = %v, want %v", tc.text, ok, tc.wantOK)
			}

			if !ok {
				return
			}

			if w.Open != tc.wantOpen || w.Close != tc.wantClose {
				t.Fatalf("ParseOperatingHours(%q) = {%s %s}, want {%s %s}",
					tc.text, w.Open, w.Close, tc.wantOpen, tc.wantClose)
			}
		})
	}
}

func TestValidateTime(t *testing.T) {
	w := Window{Open: "09:00", Close: "17:00"}

	tests := []struct {
		time string
		want bool
	}{
		{"08:59", false},
		{"09:00", true},
		{"12:30", true},
		{"17:00", true},
		{"17:01", false},
		{"9:30", true}, // unpadded input is normalized before comparing
	}

	for _, tc := range tests {
		if got := ValidateTime(tc.time, w); got != tc.want {
			t.Errorf("ValidateTime(%q, 09:00-17:00) = %v, want %v", tc.time, got, tc.want)
		}
	}
}

func TestIsClock(t *testing.T) {
	valid := []string{"9:00", "09:00", "23:59"}
	invalid := []string{"", "9", "9:0", "ten o'clock", "09:00:00"}

	for _, s := range valid {
		if !IsClock(s) {
			t.Errorf("IsClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsClock(s) {
			t.Errorf("IsClock(%q) = true, want false", s)
		}
	}
}
