package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidPeriod(t *testing.T) {
	valid := []string{"2026-01", "2025-12"}
	invalid := []string{"2026-13", "2026/01", "26-01", "2026-01-01", ""}
	for _, s := range valid {
		if _, ok := IsValidPeriod(s); !ok {
			t.Errorf("IsValidPeriod(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidPeriod(s); ok {
			t.Errorf("IsValidPeriod(%q) = true, want false", s)
		}
	}
}

func TestIsValidCompanyCode(t *testing.T) {
	valid := []string{"ACME", "ACME-2026", "X1Y"}
	invalid := []string{"ac", "acme", "ACME_CORP", "THIS-CODE-IS-WAY-TOO-LONG", ""}
	for _, s := range valid {
		if !IsValidCompanyCode(s) {
			t.Errorf("IsValidCompanyCode(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidCompanyCode(s) {
			t.Errorf("IsValidCompanyCode(%q) = true, want false", s)
		}
	}
}

func TestCoordinates(t *testing.T) {
	if !IsValidLatitude(-6.2) || IsValidLatitude(91) {
		t.Errorf("IsValidLatitude bounds are wrong")
	}
	if !IsValidLongitude(106.8) || IsValidLongitude(-181) {
		t.Errorf("IsValidLongitude bounds are wrong")
	}
}

func TestInRange(t *testing.T) {
	cases := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{5, true},
		{4.5, true},
		{-0.1, false},
		{5.01, false},
	}
	for _, c := range cases {
		if got := InRange(c.v, 0, 5); got != c.want {
			t.Errorf("InRange(%v, 0, 5) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "name", Message: "required"},
	}
	got := errs.Error()
	want := "email: invalid; name: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	var errs ValidationErrors
	errs.Add("email", "invalid")
	errs.Add("name", "required")
	got := errs.ToMap()
	want := map[string]string{"email": "invalid", "name": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("x", "bad")
	if errs.Err() == nil {
		t.Errorf("non-empty ValidationErrors.Err() should not be nil")
	}
}
