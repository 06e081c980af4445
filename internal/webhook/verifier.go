package webhook

import (
	"github.com/smallbiznis/stripesync/internal/config"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// Verifier checks the provider signature on a raw delivery and decodes the
// typed event envelope.
type Verifier interface {
	Verify(payload []byte, sigHeader string) (*stripemodel.Event, error)
}

type verifier struct {
	settings *config.SettingsHolder
}

// NewVerifier builds a Verifier reading the endpoint secret from settings on
// every call, so a rotated secret applies after Reload without a restart.
func NewVerifier(settings *config.SettingsHolder) Verifier {
	return &verifier{settings: settings}
}

// Verify validates the timestamped HMAC signature header against the shared
// endpoint secret. Stale timestamps beyond the default tolerance are rejected
// to bound replay. Only after verification is the body parsed.
func (v *verifier) Verify(payload []byte, sigHeader string) (*stripemodel.Event, error) {
	secret := v.settings.Get().WebhookSecret
	if secret == "" {
		return nil, &AuthError{Reason: "webhook secret is not configured"}
	}
	if err := stripewebhook.ValidatePayload(payload, sigHeader, secret); err != nil {
		return nil, &AuthError{Reason: "invalid signature", Err: err}
	}
	return stripemodel.ParseEvent(payload)
}
