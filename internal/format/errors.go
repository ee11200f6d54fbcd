package format

import "fmt"

// MalformedError reports a record that violates the wire format's
// structural expectations (too few fields, non-hex where hex is required,
// missing trailing delimiter). A bad global-header magic is reported as a
// plain error, not a MalformedError.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("format: malformed: %s", e.Reason)
}
