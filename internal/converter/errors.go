package converter

import "fmt"

// Compilation targets.
const (
	TargetVQL   = "vql"
	TargetWhere = "where"
)

// UnsupportedConversionError reports a filter that the requested target has
// no way to express. The filter is never dropped silently.
type UnsupportedConversionError struct {
	Target   string
	Operator string
	Field    string
	Reason   string
}

func (e *UnsupportedConversionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot be expressed in the %s target: %s", e.Operator, e.Target, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s filters cannot be expressed in the %s target", e.Operator, e.Target)
	}
	return fmt.Sprintf("%s on %q cannot be expressed in the %s target", e.Operator, e.Field, e.Target)
}
