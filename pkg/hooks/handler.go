package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

// HandlerFunc receives the envelope's data body verbatim.
type HandlerFunc func(ctx context.Context, data json.RawMessage) error

// Handler is a named unit of work. Copies of one Handler value are the same
// handler; the registry binds each Name to exactly one of them.
type Handler struct {
	Name string
	Fn   HandlerFunc

	ref *handlerRef
}

type handlerRef struct{ name string }

// NewHandler mints a handler with its own identity. Register the returned
// value (or copies of it) under as many keys as needed.
func NewHandler(name string, fn HandlerFunc) Handler {
	return Handler{Name: name, Fn: fn, ref: &handlerRef{name: name}}
}

// Same reports whether h and o are the same handler. Literals built without
// NewHandler fall back to comparing name and func.
func (h Handler) Same(o Handler) bool {
	if h.ref != nil || o.ref != nil {
		return h.ref == o.ref
	}
	return h.Name == o.Name && funcID(h.Fn) == funcID(o.Fn)
}

func funcID(fn HandlerFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// Run calls the handler in-process.
func (h Handler) Run(ctx context.Context, data json.RawMessage) error {
	if h.Fn == nil {
		return fmt.Errorf("hooks: handler %q has no func", h.Name)
	}
	return h.Fn(ctx, data)
}

// Registrar records a handler and hands it back unchanged.
type Registrar func(Handler) Handler

// Typed adapts a func over a concrete payload type. The data body is decoded
// with the lenient JSON codec so senders may add fields freely.
func Typed[T any](fn func(ctx context.Context, v T) error) HandlerFunc {
	return func(ctx context.Context, data json.RawMessage) error {
		var v T
		if len(data) > 0 {
			if err := codec.JSON.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("decode %T: %w", v, err)
			}
		}
		return fn(ctx, v)
	}
}
