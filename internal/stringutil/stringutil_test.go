package stringutil

import "testing"

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"helloWorld", "hello_world"},
		{"HelloWorld", "hello_world"},
		{"hello_world", "hello_world"},
		{"ABC", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToSnakeCase(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello_world", "helloWorld"},
		{"hello", "hello"},
		{"hello_world_test", "helloWorldTest"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToCamelCase(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestToTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "Hello World"},
		{"HELLO WORLD", "Hello World"},
		{"hello", "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToTitleCase(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRemoveSpecialChars(t *testing.T) {
	tests := []struct {
		input     string
		keepChars string
		expected  string
	}{
		{"hello@world!", "", "helloworld"},
		{"hello@world!", "@", "hello@world"},
		{"test123!@#", "", "test123"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RemoveSpecialChars(tt.input, tt.keepChars); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		suffix   string
		expected string
	}{
		{"hello world", 5, "...", "he..."},
		{"hello", 10, "...", "hello"},
		{"hello world", 8, "..", "hello .."},
		{"hello world", 2, "...", "he"},
		{"hello world", 3, "...", "hel"},
		{"hello world", 0, "...", ""},
		{"hello world", -1, "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Truncate(tt.input, tt.length, tt.suffix); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatInt(t *testing.T) {
	if got := FormatInt(1234567); got != "1,234,567" {
		t.Errorf("Expected 1,234,567, got %q", got)
	}
	if got := FormatInt(42); got != "42" {
		t.Errorf("Expected 42, got %q", got)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		number   float64
		decimals int
		expected string
	}{
		{1234.5678, 2, "1,234.57"},
		{1234.5678, 3, "1,234.568"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatFloat(tt.number, tt.decimals); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		input       string
		maskChar    string
		exposeLeft  int
		exposeRight int
		expected    string
	}{
		{"1234567890", "*", 4, 2, "1234****90"},
		{"password", "*", 2, 2, "pa****rd"},
		{"short", "*", 2, 2, "sh*rt"},
		{"Short", "*", 5, 0, "Short"},
		{"Secret", "#", 2, 1, "Se###t"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Mask(tt.input, tt.maskChar, tt.exposeLeft, tt.exposeRight)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"test@example.com", true},
		{"invalid.email", false},
		{"test@test@test.com", false},
		{"test.name+label@example.co.uk", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.email, got)
			}
		})
	}
}
