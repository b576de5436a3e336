package status

import "testing"

func TestIsValid(t *testing.T) {
	valid := []string{Active, Disabled}
	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}

	// Callers are expected to normalize before validating, so casing and
	// padding variants are rejected here rather than silently accepted.
	invalid := []string{"", "Active", "DISABLED", " active", "suspended", "new"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("IsValid(%q) = true, want false", s)
		}
	}
}

func TestDefaultIsActive(t *testing.T) {
	if got := Default(); got != Active {
		t.Errorf("Default() = %q, want %q", got, Active)
	}
	if !IsValid(Default()) {
		t.Error("Default() returned a status that IsValid rejects")
	}
}
