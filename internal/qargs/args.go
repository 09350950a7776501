// Package qargs parses the plugin command-line argument vector the host
// passes to install: a leading plugin-path token followed by key=value
// pairs.
package qargs

import "strconv"

// Value is a parsed argument value: exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	String string
}

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
)

var trueStrings = map[string]bool{"true": true, "1": true, "yes": true, "on": true}
var falseStrings = map[string]bool{"false": true, "0": true, "no": true, "off": true}

// Parse classifies a raw value string per the priority order: boolean-true
// synonym, boolean-false synonym, signed 64-bit integer, else string.
func Parse(raw string) Value {
	if trueStrings[raw] {
		return Value{Kind: KindBool, Bool: true}
	}
	if falseStrings[raw] {
		return Value{Kind: KindBool, Bool: false}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: n}
	}
	return Value{Kind: KindString, String: raw}
}

// Args is the typed key→value mapping produced by New, plus the raw
// argument vector as received.
type Args struct {
	Raw []string
	m   map[string]Value
}

// New parses argv per the host ABI contract: argv[0] is the plugin path and
// is skipped; every remaining token is split on its first '='. Tokens with
// no '=' are silently skipped. Unknown keys are not validated; they remain
// in the map for callers to query.
func New(argv []string) *Args {
	a := &Args{Raw: argv, m: make(map[string]Value)}
	if len(argv) == 0 {
		return a
	}
	for _, tok := range argv[1:] {
		for i := 0; i < len(tok); i++ {
			if tok[i] == '=' {
				key, val := tok[:i], tok[i+1:]
				a.m[key] = Parse(val)
				break
			}
		}
	}
	return a
}

// Get returns the value for key and whether it was present.
func (a *Args) Get(key string) (Value, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Bool returns the boolean value for key, or def if absent or not a bool.
func (a *Args) Bool(key string, def bool) bool {
	v, ok := a.m[key]
	if !ok || v.Kind != KindBool {
		return def
	}
	return v.Bool
}

// BoolAny returns the first present key's boolean value among keys, honoring
// the host's habit of recognizing two spellings for the same switch (e.g.
// trace_pc / log_pc).
func (a *Args) BoolAny(def bool, keys ...string) bool {
	for _, k := range keys {
		if v, ok := a.m[k]; ok && v.Kind == KindBool {
			return v.Bool
		}
	}
	return def
}

// String returns the string value for key, or def if absent. A non-string
// value is rendered back to its textual form rather than discarded, since
// sock_path=/tmp/1234 parses as a String regardless but a purely numeric
// path would otherwise be lost as an Int.
func (a *Args) String(key string, def string) string {
	v, ok := a.m[key]
	if !ok {
		return def
	}
	switch v.Kind {
	case KindString:
		return v.String
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return def
}

// StringAny is the String analogue of BoolAny.
func (a *Args) StringAny(def string, keys ...string) string {
	for _, k := range keys {
		if _, ok := a.m[k]; ok {
			return a.String(k, def)
		}
	}
	return def
}

// Int returns the integer value for key, or def if absent or not an int.
func (a *Args) Int(key string, def int64) int64 {
	v, ok := a.m[key]
	if !ok || v.Kind != KindInt {
		return def
	}
	return v.Int
}

// Len reports how many key=value pairs were successfully parsed.
func (a *Args) Len() int {
	return len(a.m)
}
