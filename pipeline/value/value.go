// Package value is a tagged-variant view over loosely typed asset data
// (type trees of scripted objects, catalog tables, bundle indices).
//
// Lookups are checked: a missing key is ErrMissingField and a value of the
// wrong variant is ErrType, both wrapped with the key or kinds involved.
package value

import (
	"errors"
	"fmt"
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindSeq
	KindMap
)

var kindNames = [...]string{"null", "string", "int", "float", "bool", "sequence", "map"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

var (
	ErrMissingField = errors.New("missing field")
	ErrType         = errors.New("unexpected value type")
)

// TypeError is returned by accessors called on the wrong variant.
type TypeError struct {
	Want, Got Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("want %s, got %s", e.Want, e.Got)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }

// Value holds exactly one variant. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	seq  []Value
	m    *Map
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Seq(items ...Value) Value { return Value{kind: KindSeq, seq: items} }

// FromMap wraps m. A nil map becomes an empty one.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) want(k Kind) error {
	if v.kind != k {
		return &TypeError{Want: k, Got: v.kind}
	}
	return nil
}

func (v Value) AsString() (string, error) {
	if err := v.want(KindString); err != nil {
		return "", err
	}
	return v.s, nil
}

func (v Value) AsInt() (int64, error) {
	if err := v.want(KindInt); err != nil {
		return 0, err
	}
	return v.i, nil
}

// AsInt32 is AsInt narrowed to 32 bits; out-of-range values are ErrType.
func (v Value) AsInt32() (int32, error) {
	i, err := v.AsInt()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, fmt.Errorf("%d overflows int32: %w", i, ErrType)
	}
	return int32(i), nil
}

// AsFloat accepts both numeric variants.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	}
	return 0, &TypeError{Want: KindFloat, Got: v.kind}
}

func (v Value) AsBool() (bool, error) {
	if err := v.want(KindBool); err != nil {
		return false, err
	}
	return v.b, nil
}

func (v Value) AsSeq() ([]Value, error) {
	if err := v.want(KindSeq); err != nil {
		return nil, err
	}
	return v.seq, nil
}

func (v Value) AsMap() (*Map, error) {
	if err := v.want(KindMap); err != nil {
		return nil, err
	}
	return v.m, nil
}

// Map is a string-keyed map that remembers insertion order.
type Map struct {
	keys []string
	vals map[string]Value
}

func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set stores v under key. Re-setting a key keeps its original position.
func (m *Map) Set(key string, v Value) *Map {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
	return m
}

func (m *Map) Lookup(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

func (m *Map) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Get returns the value under key or ErrMissingField.
func (m *Map) Get(key string) (Value, error) {
	v, ok := m.Lookup(key)
	if !ok {
		return Value{}, fmt.Errorf("%q: %w", key, ErrMissingField)
	}
	return v, nil
}

// Path follows nested maps, e.g. Path("m_originalSprite", "m_PathID").
func (m *Map) Path(keys ...string) (Value, error) {
	cur := m
	for i, k := range keys {
		v, err := cur.Get(k)
		if err != nil {
			return Value{}, err
		}
		if i == len(keys)-1 {
			return v, nil
		}
		if cur, err = v.AsMap(); err != nil {
			return Value{}, fmt.Errorf("%q: %w", k, err)
		}
	}
	return FromMap(cur), nil
}

func (m *Map) GetString(key string) (string, error) {
	v, err := m.Get(key)
	if err != nil {
		return "", err
	}
	s, err := v.AsString()
	if err != nil {
		return "", fmt.Errorf("%q: %w", key, err)
	}
	return s, nil
}

func (m *Map) GetSeq(key string) ([]Value, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	s, err := v.AsSeq()
	if err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}
	return s, nil
}

func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}
