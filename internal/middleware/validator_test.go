package middleware

import "testing"

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("11111111-1111-1111-1111-111111111111"); err != nil {
		t.Fatalf("valid uuid rejected: %v", err)
	}
	for _, bad := range []string{"", "not-a-uuid", "11111111-1111-1111-1111"} {
		if err := ValidateUUID(bad); err == nil {
			t.Fatalf("ValidateUUID(%q) accepted", bad)
		}
	}
}

func TestValidateUserID(t *testing.T) {
	for _, ok := range []string{"u-1", "user_42", "SlM7A6UIqUUOdukWJrRJdQFh6eX2"} {
		if err := ValidateUserID(ok); err != nil {
			t.Fatalf("ValidateUserID(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "has space", "semi;colon", "x/y"} {
		if err := ValidateUserID(bad); err == nil {
			t.Fatalf("ValidateUserID(%q) accepted", bad)
		}
	}
}

func TestValidateRangeKeyword(t *testing.T) {
	for _, ok := range []string{"week", "month", "year"} {
		if err := ValidateRangeKeyword(ok); err != nil {
			t.Fatalf("ValidateRangeKeyword(%q): %v", ok, err)
		}
	}
	if err := ValidateRangeKeyword("decade"); err == nil {
		t.Fatal("decade accepted")
	}
}

func TestParseDay(t *testing.T) {
	ts, err := ParseDay("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if ts.Year() != 2025 || ts.Month() != 3 || ts.Day() != 10 {
		t.Fatalf("ts = %v", ts)
	}
	if _, err := ParseDay("10/03/2025"); err == nil {
		t.Fatal("slash date accepted")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world\x07  "); got != "helloworld" {
		t.Fatalf("SanitizeString = %q", got)
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0); got != 20 {
		t.Fatalf("default = %d", got)
	}
	if got := ValidateLimit(500); got != 100 {
		t.Fatalf("cap = %d", got)
	}
	if got := ValidateLimit(7); got != 7 {
		t.Fatalf("passthrough = %d", got)
	}
}
