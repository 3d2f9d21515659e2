// Package ocppj implements the OCPP-J protocol engine: the envelope codec for
// the 3/4-element JSON array frames, the action schema registry, the call
// correlator matching asynchronous responses to pending requests, the
// dispatcher routing inbound calls to registered handlers, and the
// per-connection session with its process-wide registry.
package ocppj

import (
	"github.com/go-playground/validator/v10"
)

// Validator validates typed payload structs against their `validate` tags.
var Validator = validator.New()

var messageValidation = true

// SetMessageValidation toggles deep validation of inbound and outbound typed
// payloads. The structural schema check (field presence and coarse type) is
// always on.
func SetMessageValidation(enabled bool) {
	messageValidation = enabled
}
