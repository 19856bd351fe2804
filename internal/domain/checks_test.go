package domain

import "testing"

// TestParseCheckStatus verifies wire status tolerance and rejection.
func TestParseCheckStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want CheckStatus
		ok   bool
	}{
		{"PASS", CheckStatusPass, true},
		{"pass", CheckStatusPass, true},
		{" FAIL ", CheckStatusFail, true},
		{"WARNING", CheckStatusWarning, true},
		{"warn", CheckStatusWarning, true},
		{"MAYBE", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, err := ParseCheckStatus(tc.raw)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseCheckStatus(%q) = %q, %v, want %q", tc.raw, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseCheckStatus(%q) expected error", tc.raw)
		}
	}
}

// TestTallyResults verifies summary counts match the result sequence.
func TestTallyResults(t *testing.T) {
	results := []CheckResult{
		{CheckName: "dns", Status: CheckStatusPass},
		{CheckName: "http", Status: CheckStatusPass},
		{CheckName: "cors", Status: CheckStatusFail},
		{CheckName: "ssl", Status: CheckStatusWarning},
	}

	got := TallyResults(results)
	want := Summary{Passed: 2, Failed: 1, Warnings: 1, Total: 4}
	if got != want {
		t.Fatalf("tally = %+v, want %+v", got, want)
	}
	if got.Total != got.Passed+got.Failed+got.Warnings {
		t.Fatalf("summary invariant violated: %+v", got)
	}
}

// TestParseMode verifies defaulting and rejection of unknown modes.
func TestParseMode(t *testing.T) {
	if mode, err := ParseMode(""); err != nil || mode != ModeBeginner {
		t.Fatalf("ParseMode(\"\") = %q, %v, want beginner", mode, err)
	}
	if mode, err := ParseMode(" Expert "); err != nil || mode != ModeExpert {
		t.Fatalf("ParseMode(expert) = %q, %v", mode, err)
	}
	if _, err := ParseMode("guru"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
