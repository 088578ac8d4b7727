package hooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

var ErrMalformedEnvelope = errors.New("hooks: malformed envelope")

// EnvelopeKeys names the three top-level fields. Older senders use "action"
// where newer ones use "event".
type EnvelopeKeys struct {
	Model string `toml:"model"`
	Event string `toml:"event"`
	Data  string `toml:"data"`
}

func DefaultEnvelopeKeys() EnvelopeKeys {
	return EnvelopeKeys{Model: "model", Event: "event", Data: "data"}
}

// Envelope is an inbound event after signature verification.
type Envelope struct {
	Model string
	Event string
	Data  json.RawMessage
}

// ParseEnvelope pulls the routing key and the data body out of a JSON object.
// Unknown top-level keys are ignored; a missing data key becomes null. Key
// values are taken as sent: whether any handler matches is the registry's call.
func ParseEnvelope(body []byte, keys EnvelopeKeys) (Envelope, error) {
	keys = keys.withDefaults()

	var top map[string]json.RawMessage
	if err := codec.JSON.Unmarshal(body, &top); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if top == nil {
		return Envelope{}, fmt.Errorf("%w: body is not an object", ErrMalformedEnvelope)
	}

	model, err := stringField(top, keys.Model)
	if err != nil {
		return Envelope{}, err
	}
	event, err := stringField(top, keys.Event)
	if err != nil {
		return Envelope{}, err
	}

	data, ok := top[keys.Data]
	if !ok {
		data = json.RawMessage("null")
	}
	return Envelope{Model: model, Event: event, Data: data}, nil
}

func stringField(top map[string]json.RawMessage, key string) (string, error) {
	raw, ok := top[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedEnvelope, key)
	}
	var s string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("%w: %q must be a string", ErrMalformedEnvelope, key)
	}
	if err := codec.JSON.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %q must be a string", ErrMalformedEnvelope, key)
	}
	return s, nil
}

func (k EnvelopeKeys) withDefaults() EnvelopeKeys {
	d := DefaultEnvelopeKeys()
	if k.Model == "" {
		k.Model = d.Model
	}
	if k.Event == "" {
		k.Event = d.Event
	}
	if k.Data == "" {
		k.Data = d.Data
	}
	return k
}
