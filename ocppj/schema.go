package ocppj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"central_system/ocpp"
)

// jsonKind is the coarse JSON type expected for a payload field.
type jsonKind int

const (
	kindAny jsonKind = iota
	kindString
	kindNumber
	kindBool
	kindArray
	kindObject
	kindNull
)

func (k jsonKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	case kindNull:
		return "null"
	default:
		return "any"
	}
}

type fieldSpec struct {
	Required bool
	Kind     jsonKind
}

// ActionSpec is the static schema for one direction of one action: which
// payload fields must be present and which may be, with their coarse JSON
// types. Built once from the profile's typed payloads; immutable afterwards.
type ActionSpec struct {
	Action string
	Fields map[string]fieldSpec
}

func (spec *ActionSpec) RequiredFields() []string {
	var fields []string
	for name, field := range spec.Fields {
		if field.Required {
			fields = append(fields, name)
		}
	}
	return fields
}

func (spec *ActionSpec) OptionalFields() []string {
	var fields []string
	for name, field := range spec.Fields {
		if !field.Required {
			fields = append(fields, name)
		}
	}
	return fields
}

type ValidationErrorKind int

const (
	UnknownAction ValidationErrorKind = iota
	MissingField
	UnexpectedType
)

type ValidationError struct {
	Kind   ValidationErrorKind
	Action string
	Field  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%v: missing required field %v", e.Action, e.Field)
	case UnexpectedType:
		return fmt.Sprintf("%v: unexpected type for field %v", e.Action, e.Field)
	default:
		return fmt.Sprintf("unknown action %v", e.Action)
	}
}

var jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

func expectedKind(t reflect.Type) jsonKind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	// Types with custom decoding (e.g. DateTime) pick their own wire shape.
	if t.Implements(jsonUnmarshalerType) || reflect.PtrTo(t).Implements(jsonUnmarshalerType) {
		return kindAny
	}
	switch t.Kind() {
	case reflect.String:
		return kindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.Bool:
		return kindBool
	case reflect.Slice, reflect.Array:
		return kindArray
	case reflect.Struct, reflect.Map:
		return kindObject
	default:
		return kindAny
	}
}

// buildActionSpec reflects over a payload struct type. The field name comes
// from the json tag; a field without omitempty is required, matching the OCPP
// convention followed by every payload type in this module.
func buildActionSpec(action string, t reflect.Type) *ActionSpec {
	spec := &ActionSpec{Action: action, Fields: map[string]fieldSpec{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := tag
		required := true
		if idx := bytes.IndexByte([]byte(tag), ','); idx >= 0 {
			name = tag[:idx]
			if bytes.Contains([]byte(tag[idx:]), []byte("omitempty")) {
				required = false
			}
		}
		spec.Fields[name] = fieldSpec{Required: required, Kind: expectedKind(field.Type)}
	}
	return spec
}

func jsonValueKind(raw json.RawMessage) jsonKind {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return kindNull
	}
	switch trimmed[0] {
	case '"':
		return kindString
	case '{':
		return kindObject
	case '[':
		return kindArray
	case 't', 'f':
		return kindBool
	case 'n':
		return kindNull
	default:
		return kindNumber
	}
}

// SchemaRegistry maps action names to their payload schemas, separately for
// the Call and CallResult directions, and to the typed payload constructors.
// It is populated from profiles at construction and read-only afterwards.
type SchemaRegistry struct {
	features      map[string]ocpp.Feature
	requests      map[string]*ActionSpec
	confirmations map[string]*ActionSpec
}

func NewSchemaRegistry(profiles ...*ocpp.Profile) *SchemaRegistry {
	registry := &SchemaRegistry{
		features:      map[string]ocpp.Feature{},
		requests:      map[string]*ActionSpec{},
		confirmations: map[string]*ActionSpec{},
	}
	for _, profile := range profiles {
		for action, feature := range profile.Features {
			registry.features[action] = feature
			registry.requests[action] = buildActionSpec(action, feature.GetRequestType())
			registry.confirmations[action] = buildActionSpec(action, feature.GetConfirmationType())
		}
	}
	return registry
}

func (r *SchemaRegistry) Feature(action string) (ocpp.Feature, bool) {
	feature, ok := r.features[action]
	return feature, ok
}

func (r *SchemaRegistry) RequestSpec(action string) (*ActionSpec, bool) {
	spec, ok := r.requests[action]
	return spec, ok
}

// NewRequest returns a fresh zero value of the action's request type.
func (r *SchemaRegistry) NewRequest(action string) (ocpp.Request, bool) {
	feature, ok := r.features[action]
	if !ok {
		return nil, false
	}
	request, ok := reflect.New(feature.GetRequestType()).Interface().(ocpp.Request)
	return request, ok
}

// NewConfirmation returns a fresh zero value of the action's confirmation type.
func (r *SchemaRegistry) NewConfirmation(action string) (ocpp.Response, bool) {
	feature, ok := r.features[action]
	if !ok {
		return nil, false
	}
	confirmation, ok := reflect.New(feature.GetConfirmationType()).Interface().(ocpp.Response)
	return confirmation, ok
}

// ValidateCall checks an inbound Call payload against the action's request
// schema: presence of every required field and coarse type of every known
// field. Unknown extra fields are tolerated, as the protocol requires.
func (r *SchemaRegistry) ValidateCall(action string, payload json.RawMessage) *ValidationError {
	return r.validate(action, payload, r.requests)
}

// ValidateCallResult checks an inbound CallResult payload against the
// confirmation schema of the action it answers.
func (r *SchemaRegistry) ValidateCallResult(action string, payload json.RawMessage) *ValidationError {
	return r.validate(action, payload, r.confirmations)
}

func (r *SchemaRegistry) validate(action string, payload json.RawMessage, specs map[string]*ActionSpec) *ValidationError {
	spec, ok := specs[action]
	if !ok {
		return &ValidationError{Kind: UnknownAction, Action: action}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return &ValidationError{Kind: UnexpectedType, Action: action, Field: "payload"}
	}
	for name, field := range spec.Fields {
		raw, present := fields[name]
		if !present || jsonValueKind(raw) == kindNull {
			if field.Required {
				return &ValidationError{Kind: MissingField, Action: action, Field: name}
			}
			continue
		}
		if field.Kind != kindAny && jsonValueKind(raw) != field.Kind {
			return &ValidationError{Kind: UnexpectedType, Action: action, Field: name}
		}
	}
	return nil
}
