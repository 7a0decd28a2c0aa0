// Package apierror converts failures raised by request handlers into the
// uniform JSON error envelope. Every handler and middleware writes errors
// through this package so that no cause, stack or type name reaches a client.
package apierror

// Kind tags why a request failed. Each registered kind maps to exactly one
// HTTP status.
type Kind string

const (
	KindInvocationFailure        Kind = "invocation_failure"
	KindBadRequest               Kind = "bad_request"
	KindUnauthorized             Kind = "unauthorized"
	KindForbidden                Kind = "forbidden"
	KindNotFound                 Kind = "not_found"
	KindMethodNotAllowed         Kind = "method_not_allowed"
	KindConfigurationUnavailable Kind = "configuration_unavailable"
)

// GenericMessage is the body message for internal failures with no vetted text.
const GenericMessage = "an unexpected error occurred"
