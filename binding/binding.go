// Package binding provides the table of bindings shared by the pipeline
// stages.
//
// A binding associates an identifier with a value. Bindings are 1:1: the
// same value is never bound to two identifiers and a bound identifier
// never changes its value. The table is safe for concurrent use, but it
// gives no guarantee about the order in which one stage observes the
// bindings established by another one. A stage resolving references may
// look up an identifier before a concurrently running stage binds it.
package binding

import (
	"errors"
	"strconv"
	"sync"
)

// ErrIdentifierBound is returned when identifier is already bound to a
// different value.
var ErrIdentifierBound = errors.New("binding: identifier bound to another value")

type (
	// Table stores bindings established by binding stages.
	Table struct {
		mu          sync.RWMutex
		values      map[string]string // identifier to value
		identifiers map[string]string // value to identifier
		order       []string          // identifiers in insertion order
	}

	// Binding is a single identifier to value association.
	Binding struct {
		Identifier string `yaml:"id"`
		Value      string `yaml:"value"`
	}
)

// New creates an empty table.
func New() *Table {
	return &Table{
		values:      make(map[string]string),
		identifiers: make(map[string]string),
	}
}

// PutIfAbsent binds identifier to value if value is not bound yet. If
// value is already bound, its identifier is returned with loaded set to
// true. If identifier is bound to a different value, ErrIdentifierBound
// is returned and table is not modified.
func (t *Table) PutIfAbsent(identifier, value string) (existing string, loaded bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.identifiers[value]; ok {
		return id, true, nil
	}
	if _, ok := t.values[identifier]; ok {
		return "", false, ErrIdentifierBound
	}
	t.identifiers[value] = identifier
	t.values[identifier] = value
	t.order = append(t.order, identifier)
	return "", false, nil
}

// Get returns the value bound to identifier.
func (t *Table) Get(identifier string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[identifier]
	return v, ok
}

// Identifier returns the identifier bound to value.
func (t *Table) Identifier(value string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.identifiers[value]
	return id, ok
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Identifiers returns all bound identifiers in insertion order.
func (t *Table) Identifiers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Bindings returns a snapshot of all bindings in insertion order.
func (t *Table) Bindings() []Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bindings := make([]Binding, 0, len(t.order))
	for _, id := range t.order {
		bindings = append(bindings, Binding{Identifier: id, Value: t.values[id]})
	}
	return bindings
}

// Map returns a snapshot of all bindings as identifier to value map.
func (t *Table) Map() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := make(map[string]string, len(t.values))
	for id, v := range t.values {
		m[id] = v
	}
	return m
}

// Binder creates identifiers from a prefix and a counter. Every binding
// stage has its own binder, counter starts at 1 and is advanced only when
// a new binding is established. Binder is not safe for concurrent use.
type Binder struct {
	table   *Table
	prefix  string
	counter int
}

// NewBinder returns a binder which generates identifiers with prefix.
func (t *Table) NewBinder(prefix string) *Binder {
	return &Binder{
		table:   t,
		prefix:  prefix,
		counter: 1,
	}
}

// Bind returns the identifier bound to value, establishing a new binding
// if value was not seen before. Identifiers already taken by other values
// are skipped.
func (b *Binder) Bind(value string) string {
	for {
		next := b.candidate()
		existing, loaded, err := b.table.PutIfAbsent(next, value)
		switch {
		case loaded:
			return existing
		case err != nil:
			b.counter++
		default:
			b.counter++
			return next
		}
	}
}

func (b *Binder) candidate() string {
	return b.prefix + strconv.Itoa(b.counter)
}
