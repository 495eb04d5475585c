package identity

import "fmt"

// Kind classifies provider failures into the cases views branch on.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredential
	KindUserNotFound
	KindTooManyAttempts
	KindExchangeCancelled
	KindEmailInUse
	KindInvalidEmail
	KindOperationNotAllowed
	KindWeakSecret
)

// AuthError carries the provider's raw code and message alongside the
// classified kind. Views render Friendly(), logs keep Code.
type AuthError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider: %s", e.Code)
	}
	return "identity provider error"
}

// friendlyMessages maps every known provider error code to a fixed
// human-readable string. Codes outside this table fall back to the
// provider's raw message.
var friendlyMessages = map[string]string{
	"auth/invalid-email":          "The email address is not recognized.",
	"auth/invalid-credential":     "The email or password is incorrect.",
	"auth/user-disabled":          "This user has been disabled. Please contact support.",
	"auth/user-not-found":         "No user found with this email. Please check and try again.",
	"auth/wrong-password":         "Incorrect password.",
	"auth/email-already-in-use":   "This email is already in use. Please use a different email address.",
	"auth/weak-password":          "The password is too weak. Please choose a stronger password.",
	"auth/too-many-requests":      "Too many requests. Please try again later.",
	"auth/operation-not-allowed":  "This authentication method is not enabled. Please contact support.",
	"auth/expired-action-code":    "The link you used has expired. Please request a new one.",
	"auth/invalid-action-code":    "The link you used is invalid. Please request a new one.",
	"auth/requires-recent-login":  "This action requires you to reauthenticate. Please log in again.",
	"auth/network-request-failed": "Network error. Please check your internet connection and try again.",
	"auth/popup-closed-by-user":   "Sign-in was cancelled before it completed.",
	"auth/unknown":                "An unknown error occurred. Please try again later.",
}

var kindByCode = map[string]Kind{
	"auth/invalid-credential":    KindInvalidCredential,
	"auth/wrong-password":        KindInvalidCredential,
	"auth/user-not-found":        KindUserNotFound,
	"auth/too-many-requests":     KindTooManyAttempts,
	"auth/popup-closed-by-user":  KindExchangeCancelled,
	"auth/email-already-in-use":  KindEmailInUse,
	"auth/invalid-email":         KindInvalidEmail,
	"auth/operation-not-allowed": KindOperationNotAllowed,
	"auth/weak-password":         KindWeakSecret,
}

// Friendly returns the fixed message for known codes, the provider's raw
// message otherwise, and the code itself as the last resort. It never fails
// on an unmapped code.
func (e *AuthError) Friendly() string {
	if msg, ok := friendlyMessages[e.Code]; ok {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// newAuthError classifies a raw provider code into an AuthError.
func newAuthError(code, message string) *AuthError {
	return &AuthError{Kind: kindByCode[code], Code: code, Message: message}
}
