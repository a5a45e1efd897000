package textutil

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"user_name", []string{"user_name"}},
		{"email@example.com", []string{"email", "@", "example", ".", "com"}},
		{"", nil},
		{"  spaces  ", []string{"spaces"}},
		{"café résumé", []string{"café", "résumé"}},
		{"Paris, France.", []string{"Paris", ",", "France", "."}},
		{"U.S.", []string{"U", ".", "S", "."}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello world"},
		{"  multiple   spaces  ", " multiple spaces "},
		{"line\nbreak\rhere", "line break here"},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		got := Normalize(tt.input)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNumberPattern(t *testing.T) {
	tests := []struct {
		input string
		ratio float64
		want  string
	}{
		{"12345", 0.3, "XXXXX"},
		{"abc123", 0.3, "CCCXXX"},
		{"abc", 0.3, ""},
		{"", 0.3, ""},
		{"12-34", 0.3, "XX-XX"},
		{"a1b2c3", 0.3, "CXCXCX"},
	}
	for _, tt := range tests {
		got := NumberPattern(tt.input, tt.ratio)
		if got != tt.want {
			t.Errorf("NumberPattern(%q, %v) = %q, want %q", tt.input, tt.ratio, got, tt.want)
		}
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Paris", "Xx"},
		{"2024", "d"},
		{"U.S.", "X.X."},
		{"McDonald", "XxXx"},
		{"NATO", "X"},
		{"", ""},
		{"e-mail", "x-x"},
	}
	for _, tt := range tests {
		if got := Shape(tt.input); got != tt.want {
			t.Errorf("Shape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsTitle(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Paris", true},
		{"P", true},
		{"paris", false},
		{"PARIS", false},
		{"", false},
		{"Élan", true},
	}
	for _, tt := range tests {
		if got := IsTitle(tt.input); got != tt.want {
			t.Errorf("IsTitle(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeWhitespaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello\nworld", "hello world"},
		{"hello\r\nworld", "hello world"},
		{"a  b   c", "a b c"},
	}
	for _, tt := range tests {
		got := NormalizeWhitespaces(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeWhitespaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
