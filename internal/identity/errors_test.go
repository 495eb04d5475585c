package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendlyCoversEveryKnownCode(t *testing.T) {
	for code := range friendlyMessages {
		err := newAuthError(code, "raw provider message")
		msg := err.Friendly()
		require.NotEmpty(t, msg, "code %s", code)
		assert.NotEqual(t, code, msg, "code %s should map to prose, not echo itself", code)
	}
}

func TestFriendlyFallbacks(t *testing.T) {
	t.Run("unmapped code falls back to the raw message", func(t *testing.T) {
		err := newAuthError("auth/some-new-code", "the provider said something")
		assert.Equal(t, "the provider said something", err.Friendly())
	})

	t.Run("unmapped code without a message falls back to the code", func(t *testing.T) {
		err := newAuthError("auth/some-new-code", "")
		assert.Equal(t, "auth/some-new-code", err.Friendly())
	})
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		code string
		kind Kind
	}{
		{"auth/invalid-credential", KindInvalidCredential},
		{"auth/wrong-password", KindInvalidCredential},
		{"auth/user-not-found", KindUserNotFound},
		{"auth/too-many-requests", KindTooManyAttempts},
		{"auth/popup-closed-by-user", KindExchangeCancelled},
		{"auth/email-already-in-use", KindEmailInUse},
		{"auth/invalid-email", KindInvalidEmail},
		{"auth/operation-not-allowed", KindOperationNotAllowed},
		{"auth/weak-password", KindWeakSecret},
		{"auth/user-disabled", KindUnknown},
		{"auth/never-seen-before", KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.kind, newAuthError(tc.code, "").Kind)
		})
	}
}
