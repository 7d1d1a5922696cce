package obfuscator

import (
	"fmt"

	"github.com/valyala/fastjson"
)

const (
	fieldFile = "file_to_obfuscate"
	fieldPII  = "pii_fields"
)

// Request is one invocation: the object to obfuscate and the fields to mask,
// in the order they are applied.
type Request struct {
	FileToObfuscate string   `json:"file_to_obfuscate"`
	PIIFields       []string `json:"pii_fields"`
}

func (r Request) Validate() error {
	if r.FileToObfuscate == "" {
		return &MissingFieldError{Field: fieldFile}
	}
	if r.PIIFields == nil {
		return &MissingFieldError{Field: fieldPII}
	}
	return nil
}

// ParseEvent decodes a JSON invocation event. An absent or null key fails
// with a MissingFieldError; a key of the wrong type fails with
// ErrInvalidEvent.
func ParseEvent(raw []byte) (Request, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(raw)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return requestFromValue(v)
}

// ParseEvents decodes a batch manifest: a JSON array of invocation events.
func ParseEvents(raw []byte) ([]Request, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: manifest must be an array of events", ErrInvalidEvent)
	}

	reqs := make([]Request, 0, len(items))
	for i, item := range items {
		req, err := requestFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func requestFromValue(v *fastjson.Value) (Request, error) {
	if v.Type() != fastjson.TypeObject {
		return Request{}, fmt.Errorf("%w: event must be an object, got %s", ErrInvalidEvent, v.Type())
	}

	file := v.Get(fieldFile)
	if file == nil || file.Type() == fastjson.TypeNull {
		return Request{}, &MissingFieldError{Field: fieldFile}
	}
	fb, err := file.StringBytes()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %s must be a string", ErrInvalidEvent, fieldFile)
	}

	fields := v.Get(fieldPII)
	if fields == nil || fields.Type() == fastjson.TypeNull {
		return Request{}, &MissingFieldError{Field: fieldPII}
	}
	items, err := fields.Array()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %s must be an array of strings", ErrInvalidEvent, fieldPII)
	}
	pii := make([]string, 0, len(items))
	for _, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return Request{}, fmt.Errorf("%w: %s must be an array of strings", ErrInvalidEvent, fieldPII)
		}
		pii = append(pii, string(b))
	}

	return Request{FileToObfuscate: string(fb), PIIFields: pii}, nil
}
