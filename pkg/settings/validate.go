package settings

import "fmt"

// Severity indicates whether a finding blocks generation or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks generation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a problem in one asset slot of a bundle.
type ValidationError struct {
	Settings string   // bundle name
	Slot     int      // asset slot, -1 for the bundle itself
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Settings, e.Message)
	}
	return fmt.Sprintf("[%s] %s slot %d: %s", e.Severity, e.Settings, e.Slot, e.Message)
}

// Validate checks every template of s. Errors mark templates the generators
// will reject; warnings flag settings that are legal but likely unintended.
func Validate(s *Settings) []ValidationError {
	var errs []ValidationError
	add := func(slot int, sev Severity, format string, args ...any) {
		errs = append(errs, ValidationError{
			Settings: s.Name,
			Slot:     slot,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	if s.AssetCount() == 0 {
		add(-1, SeverityWarning, "no generated meshes or placers")
	}
	for i, m := range s.Meshes {
		if m.Sides < 3 {
			add(i, SeverityError, "sides must be at least 3, got %d", m.Sides)
		}
		if m.Length <= 0 {
			add(i, SeverityError, "length must be positive, got %g", m.Length)
		}
		if m.Scale.X == 0 || m.Scale.Y == 0 {
			add(i, SeverityWarning, "zero scale collapses the profile")
		}
	}
	for j, p := range s.Placers {
		slot := len(s.Meshes) + j
		if p.Spacing <= 0 {
			add(slot, SeverityError, "distance must be positive, got %g", p.Spacing)
		}
		if p.Type != ArcDistance && p.Type != GlobalDistance {
			add(slot, SeverityError, "unknown offset type %q", p.Type)
		}
		if p.Offset < 0 {
			add(slot, SeverityWarning, "negative offset %g places objects beyond the ends", p.Offset)
		}
		if p.Object == "" {
			add(slot, SeverityWarning, "no object to place")
		}
	}
	return errs
}

// HasErrors reports whether any finding is an error.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
