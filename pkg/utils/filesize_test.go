package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{2 * MB, "2.00 MB"},
		{3 * GB, "3.00 GB"},
		{int64(1.5 * float64(TB)), "1.50 TB"},
		{-5, "0 B"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100B", 100, false},
		{"1KB", 1024, false},
		{"1.5MB", int64(1.5 * float64(MB)), false},
		{"2gb", 2 * GB, false},
		{"nonsense", 0, true},
		{"10XB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestMegabytesOf(t *testing.T) {
	mb := float64(MB)
	tests := []struct {
		bytes int64
		want  float64
	}{
		{2 * MB, 2.0},
		{1536 * KB, 1.5},
		{1, 0.0},
		{int64(2.567 * mb), 2.57},
	}

	for _, tt := range tests {
		if got := MegabytesOf(tt.bytes); got != tt.want {
			t.Errorf("MegabytesOf(%d) = %v, want %v", tt.bytes, got, tt.want)
		}
	}
}

func TestSumSizes(t *testing.T) {
	if got := SumSizes([]int64{1, 2, 3}); got != 6 {
		t.Errorf("SumSizes = %d, want 6", got)
	}
	if got := SumSizes(nil); got != 0 {
		t.Errorf("SumSizes(nil) = %d, want 0", got)
	}
}
