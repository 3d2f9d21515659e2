package ocppj

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"central_system/ocpp"
)

// Handler answers one inbound Call on a session. Handlers for the same
// session never run concurrently; the session's read loop invokes them one at
// a time. A handler either returns a confirmation payload or rejects the call
// with a protocol error of its choosing (e.g. NotSupported).
type Handler func(session *Session, request ocpp.Request) (ocpp.Response, *ocpp.Error)

// Dispatcher routes inbound Call messages to registered action handlers and
// wraps their outcome into a CallResult or CallError.
type Dispatcher struct {
	schema   *SchemaRegistry
	handlers map[string]Handler
	log      *logrus.Entry
}

func NewDispatcher(schema *SchemaRegistry, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		schema:   schema,
		handlers: map[string]Handler{},
		log:      log,
	}
}

// Register installs the handler for an action, replacing any previous one.
// Registration happens at session construction, before any traffic flows.
func (d *Dispatcher) Register(action string, handler Handler) {
	d.handlers[action] = handler
}

// Dispatch validates and handles one inbound Call, always producing a
// response message. A failure at any stage yields a CallError and leaves the
// session open.
func (d *Dispatcher) Dispatch(session *Session, call *Call) Message {
	handler, ok := d.handlers[call.Action]
	if !ok {
		d.log.WithField("message", call.Action).Warn("no handler for action")
		return &CallError{
			UniqueId:         call.UniqueId,
			ErrorCode:        ocpp.NotImplemented,
			ErrorDescription: fmt.Sprintf("no handler for action %v", call.Action),
		}
	}
	if validationErr := d.schema.ValidateCall(call.Action, call.Payload); validationErr != nil {
		return d.validationError(call, validationErr)
	}
	request, ok := d.schema.NewRequest(call.Action)
	if !ok {
		return &CallError{
			UniqueId:         call.UniqueId,
			ErrorCode:        ocpp.NotImplemented,
			ErrorDescription: fmt.Sprintf("unsupported action %v", call.Action),
		}
	}
	if err := json.Unmarshal(call.Payload, request); err != nil {
		return &CallError{
			UniqueId:         call.UniqueId,
			ErrorCode:        ocpp.TypeConstraintViolation,
			ErrorDescription: err.Error(),
		}
	}
	if messageValidation {
		if err := Validator.Struct(request); err != nil {
			return d.structError(call, err)
		}
	}
	response, handlerErr := d.invoke(session, handler, request)
	if handlerErr != nil {
		return &CallError{
			UniqueId:         call.UniqueId,
			ErrorCode:        handlerErr.Code,
			ErrorDescription: handlerErr.Description,
		}
	}
	payload, err := json.Marshal(response)
	if err != nil {
		d.log.WithField("message", call.Action).Errorf("couldn't marshal confirmation: %v", err)
		return &CallError{
			UniqueId:         call.UniqueId,
			ErrorCode:        ocpp.InternalError,
			ErrorDescription: "couldn't marshal confirmation",
		}
	}
	return &CallResult{UniqueId: call.UniqueId, Payload: payload}
}

// invoke shields the session from a crashing handler: a panic becomes an
// InternalError answer and the connection stays up.
func (d *Dispatcher) invoke(session *Session, handler Handler, request ocpp.Request) (response ocpp.Response, handlerErr *ocpp.Error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("message", request.GetFeatureName()).Errorf("handler panic: %v", r)
			response = nil
			handlerErr = &ocpp.Error{Code: ocpp.InternalError, Description: fmt.Sprintf("handler failed: %v", r)}
		}
	}()
	return handler(session, request)
}

func (d *Dispatcher) validationError(call *Call, validationErr *ValidationError) *CallError {
	code := ocpp.FormationViolation
	switch validationErr.Kind {
	case UnknownAction:
		code = ocpp.NotImplemented
	case UnexpectedType:
		code = ocpp.PropertyConstraintViolation
	}
	return &CallError{
		UniqueId:         call.UniqueId,
		ErrorCode:        code,
		ErrorDescription: validationErr.Error(),
	}
}

func (d *Dispatcher) structError(call *Call, err error) *CallError {
	code := ocpp.PropertyConstraintViolation
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range fieldErrors {
			if fieldError.Tag() == "required" {
				code = ocpp.FormationViolation
			}
			break
		}
	}
	return &CallError{
		UniqueId:         call.UniqueId,
		ErrorCode:        code,
		ErrorDescription: err.Error(),
	}
}
