package ocppj

import (
	"encoding/json"
	"fmt"

	"central_system/ocpp"
)

// MessageType is the numeric tag in the first element of an OCPP-J frame.
type MessageType int

const (
	CALL        MessageType = 2
	CALL_RESULT MessageType = 3
	CALL_ERROR  MessageType = 4
)

// Message is one decoded OCPP-J frame: a Call, CallResult or CallError.
type Message interface {
	GetMessageTypeId() MessageType
	GetUniqueId() string
	json.Marshaler
}

// Call is a request frame: [2, uniqueId, action, payload].
type Call struct {
	UniqueId string
	Action   string
	Payload  json.RawMessage
}

func (call *Call) GetMessageTypeId() MessageType {
	return CALL
}

func (call *Call) GetUniqueId() string {
	return call.UniqueId
}

func (call *Call) MarshalJSON() ([]byte, error) {
	payload := call.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	fields := []interface{}{int(CALL), call.UniqueId, call.Action, payload}
	return json.Marshal(fields)
}

// CallResult is a successful response frame: [3, uniqueId, payload].
type CallResult struct {
	UniqueId string
	Payload  json.RawMessage
}

func (result *CallResult) GetMessageTypeId() MessageType {
	return CALL_RESULT
}

func (result *CallResult) GetUniqueId() string {
	return result.UniqueId
}

func (result *CallResult) MarshalJSON() ([]byte, error) {
	payload := result.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	fields := []interface{}{int(CALL_RESULT), result.UniqueId, payload}
	return json.Marshal(fields)
}

// CallError is a failure response frame:
// [4, uniqueId, errorCode, errorDescription, errorDetails].
type CallError struct {
	UniqueId         string
	ErrorCode        ocpp.ErrorCode
	ErrorDescription string
	ErrorDetails     json.RawMessage
}

func (callError *CallError) GetMessageTypeId() MessageType {
	return CALL_ERROR
}

func (callError *CallError) GetUniqueId() string {
	return callError.UniqueId
}

func (callError *CallError) MarshalJSON() ([]byte, error) {
	details := callError.ErrorDetails
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}
	fields := []interface{}{int(CALL_ERROR), callError.UniqueId, string(callError.ErrorCode), callError.ErrorDescription, details}
	return json.Marshal(fields)
}

// DecodeErrorKind classifies why an inbound frame could not be decoded.
type DecodeErrorKind int

const (
	// DecodeMalformed means the frame is not one of the three valid array
	// shapes (wrong JSON, wrong arity, wrong type tag, non-string id).
	DecodeMalformed DecodeErrorKind = iota
	// DecodeInvalidPayload means the envelope is well formed but the payload
	// element is not a structured value.
	DecodeInvalidPayload
)

type DecodeError struct {
	Kind        DecodeErrorKind
	Description string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case DecodeInvalidPayload:
		return fmt.Sprintf("invalid payload: %v", e.Description)
	default:
		return fmt.Sprintf("malformed message: %v", e.Description)
	}
}

func malformed(format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: DecodeMalformed, Description: fmt.Sprintf(format, args...)}
}

func parseString(raw json.RawMessage, what string) (string, *DecodeError) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed("element %v must be a string", what)
	}
	return s, nil
}

func checkStructured(raw json.RawMessage, what string) *DecodeError {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &DecodeError{Kind: DecodeInvalidPayload, Description: fmt.Sprintf("%v is not a JSON object", what)}
	}
	return nil
}

// ParseMessage decodes a raw OCPP-J frame into a Call, CallResult or
// CallError. Unknown action names are valid here; they are rejected by the
// dispatcher, not the codec.
func ParseMessage(data []byte) (Message, *DecodeError) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, malformed("frame is not a JSON array")
	}
	if len(elements) < 3 {
		return nil, malformed("expected at least 3 elements, got %v", len(elements))
	}
	var typeId int
	if err := json.Unmarshal(elements[0], &typeId); err != nil {
		return nil, malformed("message type id must be a number")
	}
	uniqueId, decErr := parseString(elements[1], "unique id")
	if decErr != nil {
		return nil, decErr
	}
	switch MessageType(typeId) {
	case CALL:
		if len(elements) != 4 {
			return nil, malformed("a Call must have 4 elements, got %v", len(elements))
		}
		action, decErr := parseString(elements[2], "action")
		if decErr != nil {
			return nil, decErr
		}
		if decErr := checkStructured(elements[3], "call payload"); decErr != nil {
			return nil, decErr
		}
		return &Call{UniqueId: uniqueId, Action: action, Payload: elements[3]}, nil
	case CALL_RESULT:
		if len(elements) != 3 {
			return nil, malformed("a CallResult must have 3 elements, got %v", len(elements))
		}
		if decErr := checkStructured(elements[2], "call result payload"); decErr != nil {
			return nil, decErr
		}
		return &CallResult{UniqueId: uniqueId, Payload: elements[2]}, nil
	case CALL_ERROR:
		if len(elements) != 5 {
			return nil, malformed("a CallError must have 5 elements, got %v", len(elements))
		}
		errorCode, decErr := parseString(elements[2], "error code")
		if decErr != nil {
			return nil, decErr
		}
		description, decErr := parseString(elements[3], "error description")
		if decErr != nil {
			return nil, decErr
		}
		if decErr := checkStructured(elements[4], "error details"); decErr != nil {
			return nil, decErr
		}
		return &CallError{
			UniqueId:         uniqueId,
			ErrorCode:        ocpp.ErrorCode(errorCode),
			ErrorDescription: description,
			ErrorDetails:     elements[4],
		}, nil
	default:
		return nil, malformed("invalid message type id %v", typeId)
	}
}
