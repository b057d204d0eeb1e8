package calendar

import "testing"

func TestHijriDate_Valid(t *testing.T) {
	tests := []struct {
		d    HijriDate
		want bool
	}{
		{HijriDate{1, 1, 1}, true},
		{HijriDate{1447, 12, 30}, true},
		{HijriDate{1446, 12, 30}, false},
		{HijriDate{1446, 2, 30}, false},
		{HijriDate{0, 1, 1}, false},
		{HijriDate{1446, 13, 1}, false},
		{HijriDate{1446, 1, 0}, false},
	}

	for _, tt := range tests {
		if got := tt.d.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestHijriDate_Clamp(t *testing.T) {
	tests := []struct {
		in, want HijriDate
	}{
		{HijriDate{0, 0, 0}, HijriDate{1, 1, 1}},
		{HijriDate{1446, 14, 40}, HijriDate{1446, 12, 29}},
		{HijriDate{1447, 12, 40}, HijriDate{1447, 12, 30}},
		{HijriDate{1446, 2, 30}, HijriDate{1446, 2, 29}},
		{HijriDate{1446, 9, 15}, HijriDate{1446, 9, 15}},
	}

	for _, tt := range tests {
		if got := tt.in.Clamp(); got != tt.want {
			t.Errorf("%v.Clamp() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHijriDate_Compare(t *testing.T) {
	a := HijriDate{1446, 9, 1}

	tests := []struct {
		b    HijriDate
		want int
	}{
		{HijriDate{1446, 9, 1}, 0},
		{HijriDate{1446, 9, 2}, -1},
		{HijriDate{1446, 8, 29}, 1},
		{HijriDate{1445, 12, 30}, 1},
		{HijriDate{1447, 1, 1}, -1},
	}

	for _, tt := range tests {
		if got := a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", a, tt.b, got, tt.want)
		}
	}
}

func TestHijriDate_String(t *testing.T) {
	if got := (HijriDate{1446, 9, 3}).String(); got != "1446-09-03" {
		t.Errorf("String() = %q, want %q", got, "1446-09-03")
	}
}

func TestParseHijriDate(t *testing.T) {
	tests := []struct {
		in      string
		want    HijriDate
		wantErr bool
	}{
		{"1446-09-23", HijriDate{1446, 9, 23}, false},
		{"1-1-1", HijriDate{1, 1, 1}, false},
		{"1447-12-30", HijriDate{1447, 12, 30}, false},
		{"1446-12-30", HijriDate{}, true},
		{"1446-13-01", HijriDate{}, true},
		{"0-01-01", HijriDate{}, true},
		{"1446/09/23", HijriDate{}, true},
		{"1446-09", HijriDate{}, true},
		{"abcd-09-01", HijriDate{}, true},
		{"", HijriDate{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHijriDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHijriDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHijriDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateString(t *testing.T) {
	d, err := ParseDateString("2025-03-20")
	if err != nil {
		t.Fatalf("ParseDateString() error = %v", err)
	}
	if got := FormatDate(d); got != "2025-03-20" {
		t.Errorf("FormatDate() = %q, want %q", got, "2025-03-20")
	}

	if _, err := ParseDateString("20-03-2025"); err == nil {
		t.Error("ParseDateString(20-03-2025) error = nil")
	}
}
