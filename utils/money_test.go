package utils

import "testing"

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "usd", false},
		{"USD", "usd", false},
		{" eur ", "eur", false},
		{"jpy", "jpy", false},
		{"dollars", "", true},
		{"zzz", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeCurrency(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeCurrency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		amount int64
		code   string
		want   string
	}{
		{1250, "usd", "12.50 USD"},
		{5, "usd", "0.05 USD"},
		{0, "eur", "0.00 EUR"},
		{500, "jpy", "500 JPY"},
		{-1999, "usd", "-19.99 USD"},
	}
	for _, tt := range tests {
		got, err := FormatMinorUnits(tt.amount, tt.code)
		if err != nil {
			t.Errorf("FormatMinorUnits(%d, %q): %v", tt.amount, tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatMinorUnits(%d, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}

	if _, err := FormatMinorUnits(100, "nope"); err == nil {
		t.Error("expected error for unknown currency")
	}
}
