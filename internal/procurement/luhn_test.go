package procurement

import "testing"

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"79927398713", true},
		{"1234567812345670", true},
		{"18", true},
		{"79927398710", false},
		{"1234567812345678", false},
		{"", false},
		{"0", false},
		{"7992739871x", false},
		{"7992 7398713", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := luhnValid(tt.id); got != tt.want {
				t.Fatalf("luhnValid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
