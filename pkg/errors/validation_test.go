package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "1", false},
		{"valid with dash", "auth-service", false},
		{"valid with spaces", "load balancer", false},
		{"valid unicode", "ノード", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"double quote", `say "hi"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidateGap(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 20, false},
		{"fractional", 0.5, false},

		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGap("cross_gap", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGap(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSpacing) {
				t.Errorf("ValidateGap(%v) code = %v, want %v", tt.value, GetCode(err), ErrCodeInvalidSpacing)
			}
		})
	}
}

func TestValidateExtent(t *testing.T) {
	if err := ValidateExtent("a", "width", 200); err != nil {
		t.Errorf("ValidateExtent(200) error = %v", err)
	}
	if err := ValidateExtent("a", "width", -3); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateExtent(-3) = %v, want %v", err, ErrCodeInvalidInput)
	}
	if err := ValidateExtent("a", "height", math.NaN()); err == nil {
		t.Error("ValidateExtent(NaN) should fail")
	}
}
