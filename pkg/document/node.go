// Package document provides the generic tree of scalar,
// sequence and mapping values that every workspace check
// operates on. Nodes are produced by parsing YAML, JSON or TOML
// sources and are immutable once built.
package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant of the tagged union a Node
// holds.
type Kind int

const (
	// Absent is the zero Kind. It marks "no value", as returned
	// by a failed resolution.
	Absent Kind = iota
	// Null is an explicit null/empty document.
	Null
	// Bool is a boolean scalar.
	Bool
	// Number is a numeric scalar.
	Number
	// String is a string scalar.
	String
	// Sequence is an ordered list of nodes.
	Sequence
	// Mapping is a string-keyed map of nodes.
	Mapping
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Node
}

// Node is a tagged value: absent, null, bool, number, string,
// sequence or mapping. The zero Node is Absent.
type Node struct {
	kind    Kind
	boolean bool
	number  float64
	integer bool
	text    string
	items   []Node
	keys    []string
	fields  map[string]Node
}

// NewNull returns an explicit null node.
func NewNull() Node { return Node{kind: Null} }

// NewBool returns a boolean node.
func NewBool(b bool) Node { return Node{kind: Bool, boolean: b} }

// NewInt returns an integral number node.
func NewInt(i int64) Node {
	return Node{kind: Number, number: float64(i), integer: true}
}

// NewFloat returns a floating point number node.
func NewFloat(f float64) Node {
	return Node{kind: Number, number: f}
}

// NewString returns a string node.
func NewString(s string) Node { return Node{kind: String, text: s} }

// NewSequence returns a sequence node holding a copy of items.
func NewSequence(items ...Node) Node {
	cp := make([]Node, len(items))
	copy(cp, items)
	return Node{kind: Sequence, items: cp}
}

// NewMapping returns a mapping node. Key order is kept for
// encoding; a repeated key overwrites the earlier value but keeps
// its original position.
func NewMapping(entries ...Entry) Node {
	n := Node{
		kind:   Mapping,
		keys:   make([]string, 0, len(entries)),
		fields: make(map[string]Node, len(entries)),
	}
	for _, e := range entries {
		if _, seen := n.fields[e.Key]; !seen {
			n.keys = append(n.keys, e.Key)
		}
		n.fields[e.Key] = e.Value
	}
	return n
}

// Kind returns the node's variant.
func (n Node) Kind() Kind { return n.kind }

// IsAbsent reports whether the node carries no value at all.
func (n Node) IsAbsent() bool { return n.kind == Absent }

// IsMapping reports whether the node is a mapping.
func (n Node) IsMapping() bool { return n.kind == Mapping }

// IsSequence reports whether the node is a sequence.
func (n Node) IsSequence() bool { return n.kind == Sequence }

// Bool returns the boolean payload and whether the node is a
// Bool.
func (n Node) Bool() (bool, bool) {
	return n.boolean, n.kind == Bool
}

// Text returns the string payload and whether the node is a
// String.
func (n Node) Text() (string, bool) {
	return n.text, n.kind == String
}

// Items returns a copy of the sequence elements, or nil when the
// node is not a sequence.
func (n Node) Items() []Node {
	if n.kind != Sequence {
		return nil
	}
	cp := make([]Node, len(n.items))
	copy(cp, n.items)
	return cp
}

// Keys returns mapping keys in insertion order, or nil when the
// node is not a mapping.
func (n Node) Keys() []string {
	if n.kind != Mapping {
		return nil
	}
	cp := make([]string, len(n.keys))
	copy(cp, n.keys)
	return cp
}

// Entries returns mapping entries in insertion order.
func (n Node) Entries() []Entry {
	if n.kind != Mapping {
		return nil
	}
	out := make([]Entry, 0, len(n.keys))
	for _, k := range n.keys {
		out = append(out, Entry{Key: k, Value: n.fields[k]})
	}
	return out
}

// Get looks up a key. A non-mapping node never contains keys.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != Mapping {
		return Node{}, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Has reports whether a mapping contains key.
func (n Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Len returns the element count of a sequence, the key count of
// a mapping, the rune count of a string and 0 otherwise.
func (n Node) Len() int {
	switch n.kind {
	case Sequence:
		return len(n.items)
	case Mapping:
		return len(n.keys)
	case String:
		return len([]rune(n.text))
	}
	return 0
}

// Truthy reports whether the node is considered non-empty:
// absent, null, false, zero, and empty strings, sequences and
// mappings are all falsy.
func (n Node) Truthy() bool {
	switch n.kind {
	case Bool:
		return n.boolean
	case Number:
		return n.number != 0
	case String:
		return n.text != ""
	case Sequence:
		return len(n.items) > 0
	case Mapping:
		return len(n.keys) > 0
	}
	return false
}

// Float converts the node to a number. Booleans count as 1/0
// and strings are parsed; anything else is not numeric.
func (n Node) Float() (float64, bool) {
	switch n.kind {
	case Number:
		return n.number, true
	case Bool:
		if n.boolean {
			return 1, true
		}
		return 0, true
	case String:
		f, err := strconv.ParseFloat(
			strings.TrimSpace(n.text), 64,
		)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Equal compares two nodes structurally. Mapping key order is
// ignored; numbers compare by value.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case Absent, Null:
		return true
	case Bool:
		return n.boolean == other.boolean
	case Number:
		return n.number == other.number
	case String:
		return n.text == other.text
	case Sequence:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case Mapping:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := other.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Repr renders the node for diagnostics: strings are quoted,
// integral numbers have no fraction, null renders as None.
func (n Node) Repr() string {
	switch n.kind {
	case Absent, Null:
		return "None"
	case Bool:
		if n.boolean {
			return "True"
		}
		return "False"
	case Number:
		return formatNumber(n.number, n.integer)
	case String:
		return quote(n.text)
	case Sequence:
		parts := make([]string, len(n.items))
		for i, it := range n.items {
			parts[i] = it.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Mapping:
		parts := make([]string, 0, len(n.keys))
		for _, k := range n.keys {
			parts = append(
				parts, quote(k)+": "+n.fields[k].Repr(),
			)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "None"
}

// String renders scalars without quoting and composites like
// Repr.
func (n Node) String() string {
	if n.kind == String {
		return n.text
	}
	return n.Repr()
}

func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func formatNumber(f float64, integer bool) string {
	if integer && f == math.Trunc(f) &&
		math.Abs(f) < 1e18 {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// FromValue converts a plain Go value, as produced by
// encoding/json, yaml.v3 or toml decoding, into a Node. Map keys
// are sorted because Go maps carry no order.
func FromValue(v any) Node {
	switch x := v.(type) {
	case nil:
		return NewNull()
	case Node:
		return x
	case bool:
		return NewBool(x)
	case int:
		return NewInt(int64(x))
	case int8:
		return NewInt(int64(x))
	case int16:
		return NewInt(int64(x))
	case int32:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case uint:
		return NewInt(int64(x))
	case uint8:
		return NewInt(int64(x))
	case uint16:
		return NewInt(int64(x))
	case uint32:
		return NewInt(int64(x))
	case uint64:
		return NewInt(int64(x))
	case float32:
		return NewFloat(float64(x))
	case float64:
		return NewFloat(x)
	case interface{ Int64() (int64, error) }:
		// json.Number
		if i, err := x.Int64(); err == nil {
			return NewInt(i)
		}
		f, err := strconv.ParseFloat(fmt.Sprint(x), 64)
		if err != nil {
			return NewString(fmt.Sprint(x))
		}
		return NewFloat(f)
	case string:
		return NewString(x)
	case time.Time:
		return NewString(x.Format(time.RFC3339))
	case []any:
		items := make([]Node, len(x))
		for i, it := range x {
			items[i] = FromValue(it)
		}
		return NewSequence(items...)
	case []string:
		items := make([]Node, len(x))
		for i, it := range x {
			items[i] = NewString(it)
		}
		return NewSequence(items...)
	case []map[string]any:
		items := make([]Node, len(x))
		for i, it := range x {
			items[i] = FromValue(it)
		}
		return NewSequence(items...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{Key: k, Value: FromValue(x[k])}
		}
		return NewMapping(entries...)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
		return FromValue(m)
	}
	return NewString(fmt.Sprint(v))
}

// Value converts the node back into plain Go values: nil, bool,
// int64, float64, string, []any and map[string]any.
func (n Node) Value() any {
	switch n.kind {
	case Bool:
		return n.boolean
	case Number:
		if n.integer {
			return int64(n.number)
		}
		return n.number
	case String:
		return n.text
	case Sequence:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.Value()
		}
		return out
	case Mapping:
		out := make(map[string]any, len(n.keys))
		for k, v := range n.fields {
			out[k] = v.Value()
		}
		return out
	}
	return nil
}
