package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, dir, body string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, "stripesync.yml"), []byte(body), 0o600)
	require.NoError(t, err)
}

func TestSettingsHolderLoadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSettingsFile(t, dir, `
stripe:
  api_secret: sk_test_123
  webhook_secret: whsec_123
  new_user_free_trial_days: 7
  user_create_attribute_map:
    email: email
    name: name
`)

	holder, err := NewSettingsHolder()
	require.NoError(t, err)

	settings := holder.Get()
	assert.Equal(t, "sk_test_123", settings.APISecret)
	assert.Equal(t, "whsec_123", settings.WebhookSecret)
	assert.Equal(t, 7, settings.NewUserFreeTrialDays)
	assert.True(t, settings.AutoCreateEnabled())

	// defaults fill everything the file leaves out
	assert.Equal(t, "subscription", settings.CheckoutMode)
	assert.Equal(t, []string{"card"}, settings.PaymentMethodTypes)
	assert.Equal(t, UserCreationPolicySkip, settings.UserCreationPolicy)
}

func TestSettingsHolderDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewSettingsHolder()
	require.NoError(t, err)

	settings := holder.Get()
	assert.Equal(t, "email", settings.UserMatchingField)
	assert.False(t, settings.AutoCreateEnabled())
}

func TestSettingsHolderReload(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSettingsFile(t, dir, "stripe:\n  api_secret: sk_old\n")

	holder, err := NewSettingsHolder()
	require.NoError(t, err)
	assert.Equal(t, "sk_old", holder.Get().APISecret)

	writeSettingsFile(t, dir, "stripe:\n  api_secret: sk_new\n")
	require.NoError(t, holder.Reload())
	assert.Equal(t, "sk_new", holder.Get().APISecret)
}

func TestSettingsHolderReloadRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeSettingsFile(t, dir, "stripe:\n  api_secret: sk_old\n")

	holder, err := NewSettingsHolder()
	require.NoError(t, err)

	writeSettingsFile(t, dir, "stripe:\n  user_creation_policy: explode\n")
	require.Error(t, holder.Reload())

	// previous snapshot stays in place
	assert.Equal(t, "sk_old", holder.Get().APISecret)
	assert.Equal(t, UserCreationPolicySkip, holder.Get().UserCreationPolicy)
}
