package mws

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the wire format for every datetime parameter.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Values is a flat set of request parameters keyed by dotted name.
type Values map[string]string

// Flattener is implemented by typed value objects that know their own wire
// representation. Keys are relative to the parameter the object is set under.
type Flattener interface {
	Flatten() Values
}

// Set encodes v under key and merges the result. Empty values are dropped.
func (v Values) Set(key string, val any) {
	v.Merge(Encoder{}.Encode(key, val))
}

// Merge copies every non-empty entry of o into v.
func (v Values) Merge(o Values) Values {
	for k, val := range o {
		if val == "" {
			continue
		}
		v[k] = val
	}
	return v
}

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Keys returns the parameter names in canonical (byte-wise) order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Canonical renders the sorted, percent-encoded key=value sequence that is
// both signed and sent.
func (v Values) Canonical() string {
	var b strings.Builder
	for i, k := range v.Keys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncode(k))
		b.WriteByte('=')
		b.WriteString(percentEncode(v[k]))
	}
	return b.String()
}

// Encoder flattens nested values into dotted parameter names. Member is the
// label inserted between a list key and the element index: "" yields Key.N,
// "member" yields Key.member.N. Which style applies is up to the call site.
//
// Nil, empty strings, empty lists and zero times are dropped. Numeric zero and
// false are sent as values, so optional counts must be left out by the caller.
// Plain structs are flattened field by field under Key.FieldName.
type Encoder struct {
	Member string
}

// Encode flattens val under key.
func (e Encoder) Encode(key string, val any) Values {
	out := Values{}
	e.encode(out, key, val)
	return out
}

// Enumerate builds Key.1, Key.2, ... from a list. A trailing dot on key is
// tolerated.
func Enumerate(key string, list any) Values {
	return Encoder{}.Encode(strings.TrimSuffix(key, "."), list)
}

// Members builds Key.member.1, Key.member.2, ... from a list.
func Members(key string, list any) Values {
	return Encoder{Member: "member"}.Encode(strings.TrimSuffix(key, "."), list)
}

// FormatTime renders t in the service's timestamp format (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (e Encoder) encode(out Values, key string, val any) {
	if val == nil || isNilPointer(val) {
		return
	}

	switch t := val.(type) {
	case Flattener:
		for k, s := range t.Flatten() {
			if s == "" {
				continue
			}
			out[joinKey(key, k)] = s
		}
		return
	case string:
		if t != "" {
			out[key] = t
		}
		return
	case bool:
		out[key] = strconv.FormatBool(t)
		return
	case time.Time:
		if !t.IsZero() {
			out[key] = FormatTime(t)
		}
		return
	case *time.Time:
		if !t.IsZero() {
			out[key] = FormatTime(*t)
		}
		return
	case fmt.Stringer:
		if s := t.String(); s != "" {
			out[key] = s
		}
		return
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		e.encode(out, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			e.encode(out, e.itemKey(key, i+1), rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			e.encode(out, joinKey(key, fmt.Sprint(k.Interface())), rv.MapIndex(k).Interface())
		}
	case reflect.String:
		if s := rv.String(); s != "" {
			out[key] = s
		}
	case reflect.Bool:
		out[key] = strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out[key] = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out[key] = strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		out[key] = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Struct:
		rt := rv.Type()
		for i := range rt.NumField() {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			e.encode(out, joinKey(key, f.Name), rv.Field(i).Interface())
		}
	}
}

func (e Encoder) itemKey(key string, n int) string {
	if e.Member == "" {
		return joinKey(key, strconv.Itoa(n))
	}
	return joinKey(key, e.Member+"."+strconv.Itoa(n))
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// percentEncode escapes everything outside A-Za-z0-9 and -_.~ over the UTF-8
// bytes of s, with upper-case hex digits.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := range len(s) {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	default:
		return false
	}
}
