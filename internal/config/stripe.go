package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/spf13/viper"
)

// StripeSettings carries every Stripe-facing knob. The struct is immutable;
// a new value is built on each (re)load and swapped in atomically.
type StripeSettings struct {
	APISecret     string `mapstructure:"api_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	FrontEndBaseURL     string `mapstructure:"front_end_base_url"`
	CheckoutSuccessPath string `mapstructure:"checkout_success_path"`
	CheckoutCancelPath  string `mapstructure:"checkout_cancel_path"`

	PaymentMethodTypes  []string `mapstructure:"payment_method_types"`
	CheckoutMode        string   `mapstructure:"checkout_mode"`
	AllowPromotionCodes bool     `mapstructure:"allow_promotion_codes"`

	NewUserFreeTrialDays int `mapstructure:"new_user_free_trial_days"`

	// UserMatchingField is the local user attribute used to match a remote
	// customer that has no link yet.
	UserMatchingField string `mapstructure:"user_matching_field"`

	// UserCreateAttributeMap maps remote customer attributes to local user
	// fields for auto-creation. Empty map means auto-creation is disabled.
	UserCreateAttributeMap map[string]string `mapstructure:"user_create_attribute_map"`

	// UserCreationPolicy controls how bulk customer sync treats customers
	// with no matching user while auto-creation is disabled: "skip" counts
	// and continues, "error" aborts the batch.
	UserCreationPolicy string `mapstructure:"user_creation_policy"`
}

// AutoCreateEnabled reports whether reconciliation may create local users.
func (s StripeSettings) AutoCreateEnabled() bool {
	return len(s.UserCreateAttributeMap) > 0
}

const (
	UserCreationPolicySkip  = "skip"
	UserCreationPolicyError = "error"
)

func defaultStripeSettings(v *viper.Viper) {
	v.SetDefault("stripe.front_end_base_url", "http://localhost:3000")
	v.SetDefault("stripe.checkout_success_path", "/payment/?session={CHECKOUT_SESSION_ID}")
	v.SetDefault("stripe.checkout_cancel_path", "/manage-subscription/")
	v.SetDefault("stripe.payment_method_types", []string{"card"})
	v.SetDefault("stripe.checkout_mode", "subscription")
	v.SetDefault("stripe.allow_promotion_codes", false)
	v.SetDefault("stripe.new_user_free_trial_days", 15)
	v.SetDefault("stripe.user_matching_field", "email")
	v.SetDefault("stripe.user_creation_policy", UserCreationPolicySkip)
}

// SettingsHolder serves the current StripeSettings. There is no file watcher;
// callers rebuild explicitly through Reload.
type SettingsHolder struct {
	v       *viper.Viper
	current atomic.Value // holds StripeSettings
}

// NewSettingsHolder reads stripe settings from stripesync.yml (working
// directory or /etc/stripesync) with STRIPESYNC_* env overrides.
func NewSettingsHolder() (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("stripesync")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/stripesync")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STRIPESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaultStripeSettings(v)

	h := &SettingsHolder{v: v}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Get returns the current settings snapshot.
func (h *SettingsHolder) Get() StripeSettings {
	return h.current.Load().(StripeSettings)
}

// Reload re-reads the underlying sources, rebuilds settings and swaps them
// in. Invalid settings are rejected and the previous snapshot stays in place.
func (h *SettingsHolder) Reload() error {
	if err := h.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	var cfg StripeSettings
	if err := h.v.UnmarshalKey("stripe", &cfg); err != nil {
		return err
	}
	if err := validateStripeSettings(cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

// NewStaticSettingsHolder builds a holder pinned to the given settings.
// Reload rebuilds from defaults plus whatever the test put in the viper.
func NewStaticSettingsHolder(s StripeSettings) *SettingsHolder {
	v := viper.New()
	defaultStripeSettings(v)
	h := &SettingsHolder{v: v}
	h.current.Store(s)
	return h
}

func validateStripeSettings(cfg StripeSettings) error {
	if cfg.UserCreationPolicy != UserCreationPolicySkip && cfg.UserCreationPolicy != UserCreationPolicyError {
		return errors.New("stripe.user_creation_policy must be skip or error")
	}
	if cfg.CheckoutMode == "" {
		return errors.New("stripe.checkout_mode cannot be empty")
	}
	if len(cfg.PaymentMethodTypes) == 0 {
		return errors.New("stripe.payment_method_types cannot be empty")
	}
	if cfg.UserMatchingField == "" {
		return errors.New("stripe.user_matching_field cannot be empty")
	}
	return nil
}
