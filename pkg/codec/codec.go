// Package codec defines the contract shared by every binary-to-text codec
// and an ordered, immutable registry of codecs.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Codec converts between raw bytes and one textual encoding. Decode must
// return an error wrapping one of the codecerr kinds when its input is not in
// the codec's format.
type Codec interface {
	Name() string
	Encode(b []byte) ([]byte, error)
	Decode(b []byte) ([]byte, error)
}

type funcCodec struct {
	name   string
	encode func([]byte) ([]byte, error)
	decode func([]byte) ([]byte, error)
}

func (c *funcCodec) Name() string                    { return c.name }
func (c *funcCodec) Encode(b []byte) ([]byte, error) { return c.encode(b) }
func (c *funcCodec) Decode(b []byte) ([]byte, error) { return c.decode(b) }

// New returns a Codec backed by a pair of functions.
func New(name string, encode, decode func([]byte) ([]byte, error)) Codec {
	return &funcCodec{name: name, encode: encode, decode: decode}
}

// Registry is an ordered set of codecs with unique names. The order is the
// order codecs were passed to NewRegistry and is kept by every derived
// registry.
type Registry struct {
	codecs []Codec
	byName map[string]Codec
}

// ErrUnknownCodec is returned when a name does not match any registered
// codec.
var ErrUnknownCodec = errors.New("unknown codec")

// NewRegistry builds a registry from codecs.
func NewRegistry(codecs ...Codec) (*Registry, error) {
	r := &Registry{
		codecs: make([]Codec, 0, len(codecs)),
		byName: make(map[string]Codec, len(codecs)),
	}
	for _, c := range codecs {
		if c == nil {
			return nil, fmt.Errorf("cannot register nil codec")
		}
		name := c.Name()
		if name == "" {
			return nil, fmt.Errorf("codec name cannot be empty")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("codec %s is already registered", name)
		}
		r.byName[name] = c
		r.codecs = append(r.codecs, c)
	}
	return r, nil
}

// Codecs returns the registered codecs in order.
func (r *Registry) Codecs() []Codec {
	return append([]Codec(nil), r.codecs...)
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	return len(r.codecs)
}

// Lookup finds a codec by exact name, falling back to a case-insensitive
// match.
func (r *Registry) Lookup(name string) (Codec, bool) {
	if c, ok := r.byName[name]; ok {
		return c, true
	}
	for _, c := range r.codecs {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) resolve(names []string) (map[string]bool, error) {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		c, ok := r.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, n)
		}
		set[c.Name()] = true
	}
	return set, nil
}

func (r *Registry) filter(keep func(Codec) bool) *Registry {
	out := &Registry{byName: make(map[string]Codec)}
	for _, c := range r.codecs {
		if keep(c) {
			out.codecs = append(out.codecs, c)
			out.byName[c.Name()] = c
		}
	}
	return out
}

// Without returns a registry lacking the named codecs.
func (r *Registry) Without(names ...string) (*Registry, error) {
	drop, err := r.resolve(names)
	if err != nil {
		return nil, err
	}
	return r.filter(func(c Codec) bool { return !drop[c.Name()] }), nil
}

// Only returns a registry holding just the named codecs, in registry order.
func (r *Registry) Only(names ...string) (*Registry, error) {
	keep, err := r.resolve(names)
	if err != nil {
		return nil, err
	}
	return r.filter(func(c Codec) bool { return keep[c.Name()] }), nil
}
