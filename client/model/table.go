package model

import (
	"errors"
	"fmt"
)

// ErrMapping matches every *MappingError via errors.Is.
var ErrMapping = errors.New("no wire mapping")

// MappingError is returned when a value or a wire string has no pair in a table.
type MappingError struct {
	Table string
	Value any
}

func (e *MappingError) Error() string {
	if s, ok := e.Value.(string); ok {
		return fmt.Sprintf("%s: no mapping for wire string %q", e.Table, s)
	}
	return fmt.Sprintf("%s: no mapping for value %v", e.Table, e.Value)
}

func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// Pair binds one enum value to its canonical wire string.
type Pair[T comparable] struct {
	Wire  string
	Value T
}

// PairTable is a read-only bidirectional mapping between a closed set of
// values and their wire strings. It is immutable after NewPairTable returns
// and may be shared by any number of goroutines.
type PairTable[T comparable] struct {
	name   string
	pairs  []Pair[T]
	toWire map[T]string
	toVal  map[string]T
}

// NewPairTable builds a table from ordered pairs. It panics on a duplicate
// wire string or value since tables are package-level and built at init.
func NewPairTable[T comparable](name string, pairs ...Pair[T]) *PairTable[T] {
	t := &PairTable[T]{
		name:   name,
		pairs:  make([]Pair[T], 0, len(pairs)),
		toWire: make(map[T]string, len(pairs)),
		toVal:  make(map[string]T, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := t.toVal[p.Wire]; ok {
			panic(fmt.Sprintf("%s: duplicate wire string %q", name, p.Wire))
		}
		if _, ok := t.toWire[p.Value]; ok {
			panic(fmt.Sprintf("%s: duplicate value for wire string %q", name, p.Wire))
		}
		t.toWire[p.Value] = p.Wire
		t.toVal[p.Wire] = p.Value
		t.pairs = append(t.pairs, p)
	}
	return t
}

// Name returns the diagnostic name of the table.
func (t *PairTable[T]) Name() string {
	return t.name
}

// Encode returns the wire string for v.
func (t *PairTable[T]) Encode(v T) (string, error) {
	s, ok := t.toWire[v]
	if !ok {
		return "", &MappingError{Table: t.name, Value: v}
	}
	return s, nil
}

// Decode returns the value whose wire string is exactly s.
func (t *PairTable[T]) Decode(s string) (T, error) {
	v, ok := t.toVal[s]
	if !ok {
		var zero T
		return zero, &MappingError{Table: t.name, Value: s}
	}
	return v, nil
}

// Pairs returns a copy of the pairs in construction order.
func (t *PairTable[T]) Pairs() []Pair[T] {
	out := make([]Pair[T], len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Wires returns the wire strings in construction order.
func (t *PairTable[T]) Wires() []string {
	out := make([]string, 0, len(t.pairs))
	for _, p := range t.pairs {
		out = append(out, p.Wire)
	}
	return out
}
