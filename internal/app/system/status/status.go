// Package status provides the canonical account status values.
//
// Blog and lead statuses live with their models; this package covers the
// active/disabled pair shared by anything that can be switched off, which
// today means user accounts. The constants are plain strings (not a
// custom type) for compatibility with MongoDB queries.
package status

// Account status values.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid returns true if s is a recognized status value.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}

// Default returns the default status for new accounts.
func Default() string {
	return Active
}
