package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"5000", 500000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseOptionalCents(t *testing.T) {
	for in, want := range map[string]int64{"": 0, "  ": 0, "0": 0, "3200": 320000} {
		got, err := ParseOptionalCents(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %d, got %d (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseOptionalCents("-5"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:         "PKR 0",
		500000:    "PKR 5,000",
		1250:      "PKR 12.50",
		123456789: "PKR 1,234,567.89",
		-570000:   "-PKR 5,700",
		105:       "PKR 1.05",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d expected %q, got %q", cents, want, got)
		}
	}
}
