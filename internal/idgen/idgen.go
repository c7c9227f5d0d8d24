// Package idgen produces public paste identifiers.
// Generators are safe for concurrent use.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator generates unique, URL-safe identifiers.
type Generator interface {
	Generate() (string, error)
}

// Strategy names an identifier scheme.
type Strategy string

const (
	Base62 Strategy = "base62"
	UUIDv4 Strategy = "uuidv4"
	UUIDv7 Strategy = "uuidv7"
)

const (
	DefaultBase62Length = 10
	MinBase62Length     = 8
	MaxBase62Length     = 64
)

/***************
 * UUID v4
 ***************/

type v4Gen struct{}

// NewV4 returns a Generator that produces UUID v4 strings.
func NewV4() Generator { return v4Gen{} }

func (v4Gen) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("uuid v4 generation failed: %w", err)
	}
	return id.String(), nil
}

/***************
 * UUID v7
 ***************/

type v7Gen struct {
	maxRetries int
}

type V7Option func(*v7Gen)

// WithRetries sets how many times to retry uuid.NewV7() after the initial attempt.
// Defaults to 1. Set to 0 to disable retries.
func WithRetries(n int) V7Option {
	return func(g *v7Gen) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// NewV7 returns a Generator that produces time-ordered UUID v7 strings.
func NewV7(opts ...V7Option) Generator {
	g := &v7Gen{maxRetries: 1}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *v7Gen) Generate() (string, error) {
	var last error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		id, err := uuid.NewV7()
		if err == nil {
			return id.String(), nil
		}
		last = err
	}
	return "", fmt.Errorf("uuid v7 generation failed after %d attempts: %w", g.maxRetries+1, last)
}

// New returns the Generator for a configured strategy. length only applies
// to Base62 and falls back to DefaultBase62Length when out of range.
func New(s Strategy, length int) (Generator, error) {
	switch s {
	case Base62, "":
		if length < MinBase62Length || length > MaxBase62Length {
			length = DefaultBase62Length
		}
		return NewBase62(length), nil
	case UUIDv4:
		return NewV4(), nil
	case UUIDv7:
		return NewV7(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (must be one of: base62, uuidv4, uuidv7)", s)
	}
}
