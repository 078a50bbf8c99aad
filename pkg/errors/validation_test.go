package errors

import (
	"math"
	"testing"
)

func TestValidateFraction(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"one", 1, false},
		{"typical", 0.9, false},
		{"tiny", 1e-6, false},
		{"zero", 0, true},
		{"negative", -0.5, true},
		{"above one", 1.01, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFraction("width", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFraction(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidOption) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidOption)
			}
		})
	}
}

func TestValidateZoomFactor(t *testing.T) {
	tests := []struct {
		f       float64
		wantErr bool
	}{
		{0.75, false},
		{0.5, false},
		{0, true},
		{1, true},
		{1.5, true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		if err := ValidateZoomFactor(tt.f); (err != nil) != tt.wantErr {
			t.Errorf("ValidateZoomFactor(%v) error = %v, wantErr %v", tt.f, err, tt.wantErr)
		}
	}
}

func TestValidateDatasetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "sales", false},
		{"valid with dash", "cpu-usage", false},
		{"valid with underscore", "cpu_usage", false},
		{"valid with dot", "q1.2024", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path traversal ..", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"leading dot", ".hidden", true},
		{"space", "my data", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatasetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
