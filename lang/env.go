package lang

import (
	"bytes"
	"encoding/binary"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Indirection is the prefix marking a key whose value names another key.
const Indirection = "$"

// Environment stores the variables and blocks of one render.
//
// A key beginning with [Indirection] is resolved exactly one level deep:
// the value stored under "$k" is used as the name of the key read or
// written. Variables and blocks are global to the render; statements that
// introduce them have no scope.
type Environment struct {
	vars   map[string]string
	blocks map[string][]Part
}

// NewEnvironment returns an environment seeded with vars.
func NewEnvironment(vars map[string]string) *Environment {
	env := &Environment{
		vars:   make(map[string]string, len(vars)),
		blocks: make(map[string][]Part),
	}

	maps.Copy(env.vars, vars)

	return env
}

// RealKey returns the key that key refers to: key itself, or the value
// stored under key if key is an indirection.
func (e *Environment) RealKey(key string) (string, error) {
	if !strings.HasPrefix(key, Indirection) {
		return key, nil
	}

	target, ok := e.vars[key]
	if !ok {
		return "", e.undefined(ErrBrokenIndirection, key)
	}

	return target, nil
}

// Get returns the value of key, following one level of indirection.
func (e *Environment) Get(key string) (string, error) {
	target, err := e.RealKey(key)
	if err != nil {
		return "", err
	}

	val, ok := e.vars[target]
	if !ok {
		err := e.undefined(ErrUndefinedVariable, target)
		if target != key {
			err = err.With(slog.String("via", key))
		}

		return "", err
	}

	return val, nil
}

// Lookup is like [Environment.Get] but reports absence with ok instead of
// an error.
func (e *Environment) Lookup(key string) (val string, ok bool) {
	val, err := e.Get(key)

	return val, err == nil
}

// Has reports whether key is defined. A broken indirection is an error.
func (e *Environment) Has(key string) (bool, error) {
	target, err := e.RealKey(key)
	if err != nil {
		return false, err
	}

	_, ok := e.vars[target]

	return ok, nil
}

// Set assigns val to key, following one level of indirection.
func (e *Environment) Set(key, val string) error {
	target, err := e.RealKey(key)
	if err != nil {
		return err
	}

	e.vars[target] = val

	return nil
}

// Unset removes key, following one level of indirection.
func (e *Environment) Unset(key string) error {
	target, err := e.RealKey(key)
	if err != nil {
		return err
	}

	delete(e.vars, target)

	return nil
}

// SetBlock stores parts under name, replacing any previous definition.
// The parts must own their text.
func (e *Environment) SetBlock(name string, parts []Part) {
	e.blocks[name] = slices.Clone(parts)
}

// Block returns a copy of the parts stored under name.
func (e *Environment) Block(name string) ([]Part, error) {
	parts, ok := e.blocks[name]
	if !ok {
		return nil, ErrUndefinedBlock.With(
			append(
				[]slog.Attr{slog.String("name", name)},
				hint(name, slices.Collect(maps.Keys(e.blocks)))...,
			)...,
		)
	}

	return slices.Clone(parts), nil
}

// Vars iterates over the variables in key order.
func (e *Environment) Vars() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range slices.Sorted(maps.Keys(e.vars)) {
			if !yield(k, e.vars[k]) {
				return
			}
		}
	}
}

// Blocks iterates over the blocks in name order, yielding the source text
// of each block body.
func (e *Environment) Blocks() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range slices.Sorted(maps.Keys(e.blocks)) {
			if !yield(k, joinParts(e.blocks[k])) {
				return
			}
		}
	}
}

// Names returns the sorted names of all variables and blocks.
func (e *Environment) Names() []string {
	names := slices.Collect(maps.Keys(e.vars))
	names = append(names, slices.Collect(maps.Keys(e.blocks))...)
	slices.Sort(names)

	return slices.Compact(names)
}

// Len returns the number of variables.
func (e *Environment) Len() int { return len(e.vars) }

// Fingerprint returns a hash of all variables and blocks. Two environments
// with equal contents have equal fingerprints.
func (e *Environment) Fingerprint() uint64 {
	var buf bytes.Buffer

	write := func(s string) {
		_ = binary.Write(&buf, binary.LittleEndian, uint64(len(s)))
		buf.WriteString(s)
	}

	for k, v := range e.Vars() {
		write(k)
		write(v)
	}

	buf.WriteString("\x00blocks\x00")

	for k, v := range e.Blocks() {
		write(k)
		write(v)
	}

	return xxh3.Hash(buf.Bytes())
}

func (e *Environment) undefined(sentinel *Error, key string) *Error {
	return sentinel.With(
		append(
			[]slog.Attr{slog.String("name", key)},
			hint(key, slices.Collect(maps.Keys(e.vars)))...,
		)...,
	)
}

func joinParts(parts []Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.Kind != KindComment {
			sb.WriteString(p.Content(""))
		}
	}

	return sb.String()
}
