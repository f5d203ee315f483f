package gateway

import "strings"

// Disposition is the outcome of classifying an authorization failure.
type Disposition int

const (
	// DispositionContextual surfaces the failure to the page-local caller;
	// the session is left untouched.
	DispositionContextual Disposition = iota
	// DispositionSessionInvalid requires re-authentication.
	DispositionSessionInvalid
	// DispositionBusiness is a business-rule rejection surfaced unchanged.
	DispositionBusiness
)

func (d Disposition) String() string {
	switch d {
	case DispositionContextual:
		return "contextual"
	case DispositionSessionInvalid:
		return "session-invalid"
	case DispositionBusiness:
		return "business"
	default:
		return "unknown"
	}
}

// IsServiceDetailPath reports whether path is a service detail page, as
// opposed to the services listing.
func IsServiceDetailPath(path string) bool {
	return strings.HasPrefix(path, "/services/") && path != "/services"
}

// IsAuthPath reports whether path is a login or registration page.
func IsAuthPath(path string) bool {
	return path == "/login" || path == "/register"
}

// Classify maps a 401/403 failure to a disposition given the ambient path
// and the server error message. Rules apply in order, first match wins:
//
//  1. On a service detail page every authorization failure is contextual:
//     booking dialogs there handle their own errors, and a forced redirect
//     would destroy the view mid-action.
//  2. Messages carrying session language ("Unauthorized", "token",
//     "Forbidden: Invalid"), an empty message, or a bare "Forbidden" mean
//     the session itself is invalid. Empty and bare "Forbidden" are
//     deliberately included: the backend omits detail exactly when the
//     token failed verification.
//  3. Everything else is a business-rule rejection.
func Classify(path, message string) Disposition {
	if IsServiceDetailPath(path) {
		return DispositionContextual
	}

	sessionIndicated := strings.Contains(message, "Unauthorized") ||
		strings.Contains(message, "token") ||
		strings.Contains(message, "Forbidden: Invalid") ||
		message == "" ||
		message == "Forbidden"
	if sessionIndicated {
		return DispositionSessionInvalid
	}

	return DispositionBusiness
}
