package webhook

import "fmt"

// AuthError reports a delivery that failed signature verification. The body
// is untrusted and must not be parsed.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("webhook authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }
