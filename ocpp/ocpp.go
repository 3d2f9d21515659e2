// Package ocpp contains the types shared between the protocol engine and the
// OCPP 1.6 feature profiles: request/response capabilities, feature and
// profile definitions, and the protocol-level error codes carried inside
// CallError messages.
package ocpp

import (
	"fmt"
	"reflect"
)

// Request is a payload sent inside a Call message. Every typed request knows
// the name of the feature (action) it belongs to.
type Request interface {
	GetFeatureName() string
}

// Response is a payload sent inside a CallResult message, answering a
// previously received Call.
type Response interface {
	GetFeatureName() string
}

// Feature ties an action name to the Go types of its request and confirmation
// payloads. The schema registry reflects over these types once at startup.
type Feature interface {
	GetFeatureName() string
	GetRequestType() reflect.Type
	GetConfirmationType() reflect.Type
}

// Profile groups the features of one OCPP functional profile (core,
// reservation, ...). Profiles are immutable after construction.
type Profile struct {
	Name     string
	Features map[string]Feature
}

func NewProfile(name string, features ...Feature) *Profile {
	profile := &Profile{Name: name, Features: map[string]Feature{}}
	for _, feature := range features {
		profile.Features[feature.GetFeatureName()] = feature
	}
	return profile
}

func (p *Profile) GetFeature(name string) Feature {
	return p.Features[name]
}

func (p *Profile) SupportsFeature(name string) bool {
	_, ok := p.Features[name]
	return ok
}

// ErrorCode is one of the error codes allowed in an OCPP-J CallError message.
type ErrorCode string

const (
	NotImplemented                ErrorCode = "NotImplemented"
	NotSupported                  ErrorCode = "NotSupported"
	InternalError                 ErrorCode = "InternalError"
	ProtocolError                 ErrorCode = "ProtocolError"
	SecurityError                 ErrorCode = "SecurityError"
	FormationViolation            ErrorCode = "FormationViolation"
	PropertyConstraintViolation   ErrorCode = "PropertyConstraintViolation"
	OccurrenceConstraintViolation ErrorCode = "OccurenceConstraintViolation"
	TypeConstraintViolation       ErrorCode = "TypeConstraintViolation"
	GenericError                  ErrorCode = "GenericError"
)

// Error is a protocol-visible failure: either decoded from an inbound
// CallError or produced locally and encoded into an outbound one.
type Error struct {
	Code        ErrorCode
	Description string
	MessageId   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocpp message (%s): %v - %v", e.MessageId, e.Code, e.Description)
}

func NewError(code ErrorCode, description string, messageId string) *Error {
	return &Error{Code: code, Description: description, MessageId: messageId}
}
