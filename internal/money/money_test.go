package money

import (
	"errors"
	"testing"
)

func TestToSubunits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{"whole units", "10", 1000, nil},
		{"two decimals", "10.50", 1050, nil},
		{"one decimal", "0.5", 50, nil},
		{"zero", "0", 0, nil},
		{"rounds half up", "10.505", 1051, nil},
		{"rounds down", "10.504", 1050, nil},
		{"negative rejected", "-5", 0, ErrNegativeAmount},
		{"garbage rejected", "abc", 0, ErrInvalidFormat},
		{"empty rejected", "", 0, ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSubunits(tt.input, DefaultSubunitToUnit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ToSubunits(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ToSubunits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromSubunits(t *testing.T) {
	got, err := FromSubunits(1050, DefaultSubunitToUnit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.50" {
		t.Errorf("FromSubunits(1050) = %q, want %q", got, "10.50")
	}

	if _, err := FromSubunits(-1, DefaultSubunitToUnit); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("FromSubunits(-1) error = %v, want ErrNegativeAmount", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"₦1,050.50", 105050},
		{"$250", 25000},
		{"€ 99.99", 9999},
		{"1 000", 100000},
		{"42.10", 4210},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input, DefaultSubunitToUnit)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}

	if _, err := Parse("₦", DefaultSubunitToUnit); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Parse of bare symbol should fail, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{105050, "₦1,050.50"},
		{0, "₦0.00"},
		{5, "₦0.05"},
		{123456789, "₦1,234,567.89"},
	}
	for _, tt := range tests {
		got, err := Format(tt.amount, "₦", DefaultSubunitToUnit)
		if err != nil {
			t.Fatalf("Format(%d) unexpected error: %v", tt.amount, err)
		}
		if got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 99, 100, 105050, 999999999} {
		formatted, err := Format(amount, "₦", DefaultSubunitToUnit)
		if err != nil {
			t.Fatalf("Format(%d): %v", amount, err)
		}
		back, err := Parse(formatted, DefaultSubunitToUnit)
		if err != nil {
			t.Fatalf("Parse(%q): %v", formatted, err)
		}
		if back != amount {
			t.Errorf("round trip %d -> %q -> %d", amount, formatted, back)
		}
	}
}

func TestSplit(t *testing.T) {
	shares, err := Split(1000, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{334, 333, 333}
	var sum int64
	for i, s := range shares {
		if s != want[i] {
			t.Errorf("share %d = %d, want %d", i, s, want[i])
		}
		sum += s
	}
	if sum != 1000 {
		t.Errorf("shares sum to %d, want 1000", sum)
	}

	if _, err := Split(1000, 0); !errors.Is(err, ErrInvalidParts) {
		t.Errorf("Split with zero parts should fail, got %v", err)
	}
}

func TestSplitNeverLosesSubunits(t *testing.T) {
	for amount := int64(0); amount < 100; amount++ {
		for parts := 1; parts <= 7; parts++ {
			shares, err := Split(amount, parts)
			if err != nil {
				t.Fatalf("Split(%d, %d): %v", amount, parts, err)
			}
			var sum int64
			for _, s := range shares {
				sum += s
			}
			if sum != amount {
				t.Fatalf("Split(%d, %d) sums to %d", amount, parts, sum)
			}
		}
	}
}

func TestMultiply(t *testing.T) {
	got, err := Multiply(1000, "1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1500 {
		t.Errorf("Multiply(1000, 1.5) = %d, want 1500", got)
	}

	// half-up on the resulting subunit
	got, err = Multiply(1001, "0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 501 {
		t.Errorf("Multiply(1001, 0.5) = %d, want 501", got)
	}
}

func TestDivide(t *testing.T) {
	got, err := Divide(1000, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 333 {
		t.Errorf("Divide(1000, 3) = %d, want 333", got)
	}

	if _, err := Divide(1000, 0); !errors.Is(err, ErrZeroDivisor) {
		t.Errorf("Divide by zero should fail, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(20000, 15); got != 3000 {
		t.Errorf("Percentage(20000, 15) = %d, want 3000", got)
	}
	if got := Percentage(333, 10); got != 33 {
		t.Errorf("Percentage(333, 10) = %d, want 33", got)
	}
}

func TestCompareAndAbs(t *testing.T) {
	if Compare(1, 2) != -1 || Compare(2, 1) != 1 || Compare(5, 5) != 0 {
		t.Error("Compare ordering is wrong")
	}
	if Abs(-42) != 42 || Abs(42) != 42 || Abs(0) != 0 {
		t.Error("Abs is wrong")
	}
}
