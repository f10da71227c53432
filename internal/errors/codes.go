// Package errors defines the failure taxonomy shared by every panel.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNetwork means the request never produced an HTTP response.
	CodeNetwork Code = "NETWORK_ERROR"

	// CodeServerRejected covers non-2xx statuses and embedded success:false.
	CodeServerRejected Code = "SERVER_REJECTED"

	// CodeNotFound is a local cache miss when opening a record for edit.
	CodeNotFound Code = "NOT_FOUND"

	// CodeValidation is raised before any network call.
	CodeValidation Code = "VALIDATION_ERROR"
)

// Label returns a short human label for toasts.
func (c Code) Label() string {
	switch c {
	case CodeNetwork:
		return "network error"
	case CodeServerRejected:
		return "rejected by server"
	case CodeNotFound:
		return "not found"
	case CodeValidation:
		return "invalid input"
	default:
		return "error"
	}
}
