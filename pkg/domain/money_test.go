package domain

import (
	"encoding/json"
	"testing"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
		ok   bool
	}{
		{"6.00", 600, true},
		{"6", 600, true},
		{"6.5", 650, true},
		{"50.00", 5000, true},
		{"0.01", 1, true},
		{"-2.50", -250, true},
		{".75", 75, true},
		{"6.005", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseCents(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseCents(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCentsAdditionIsExact(t *testing.T) {
	notary, err := ParseCents("6.00")
	if err != nil {
		t.Fatalf("parse notary fee: %v", err)
	}
	travel, err := ParseCents("50.00")
	if err != nil {
		t.Fatalf("parse travel fee: %v", err)
	}
	total := notary + travel
	if total.String() != "56.00" {
		t.Fatalf("total = %s, want 56.00", total)
	}
	// Repeated computation never drifts.
	for i := 0; i < 1000; i++ {
		if got := notary + travel; got != total {
			t.Fatalf("iteration %d: total drifted to %s", i, got)
		}
	}
}

func TestCentsJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Cents(5600))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"56.00"` {
		t.Fatalf("marshal = %s, want \"56.00\"", out)
	}
	var fromString Cents
	if err := json.Unmarshal([]byte(`"56.00"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	var fromNumber Cents
	if err := json.Unmarshal([]byte(`56.00`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromString != 5600 || fromNumber != 5600 {
		t.Fatalf("round trip mismatch: string=%d number=%d", fromString, fromNumber)
	}
}
