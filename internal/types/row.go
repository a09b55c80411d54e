package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row maps column names to values and keeps them in header order. Fields
// added later (buckets) go to the end.
type Row struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func NewRow() *Row {
	return &Row{fields: orderedmap.New[string, Value]()}
}

func (*Row) Kind() Kind { return KindRow }

// Set stores v under key. Overwriting an existing key keeps its position.
func (r *Row) Set(key string, v Value) {
	if v == nil {
		v = Undefined{}
	}
	r.fields.Set(key, v)
}

func (r *Row) Get(key string) (Value, bool) {
	return r.fields.Get(key)
}

// Value returns the value under key, or Undefined when the key is absent.
func (r *Row) Value(key string) Value {
	if v, ok := r.fields.Get(key); ok {
		return v
	}
	return Undefined{}
}

func (r *Row) Delete(key string) {
	r.fields.Delete(key)
}

func (r *Row) Len() int {
	return r.fields.Len()
}

func (r *Row) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// All yields fields in order. The row must not be modified while iterating.
func (r *Row) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// ErrFieldTaken is returned when a create bucket would replace a field that
// already holds a value.
var ErrFieldTaken = errors.New("field already holds a value")

// Bucket returns the create bucket stored under relation, adding an empty
// one when the field is missing or undefined. A field holding any other
// value is left alone and ErrFieldTaken is returned.
func (r *Row) Bucket(relation string) (*Bucket, error) {
	if v, ok := r.fields.Get(relation); ok {
		if b, ok := v.(*Bucket); ok {
			return b, nil
		}
		if IsDefined(v) {
			return nil, fmt.Errorf("%s: %w", relation, ErrFieldTaken)
		}
	}
	b := &Bucket{Create: []*Row{}}
	r.fields.Set(relation, b)
	return b, nil
}

// Append adds rows to the bucket under relation, creating it if needed.
func (r *Row) Append(relation string, rows ...*Row) error {
	b, err := r.Bucket(relation)
	if err != nil {
		return err
	}
	b.Create = append(b.Create, rows...)
	return nil
}

// MarshalJSON writes fields in order and leaves out undefined ones.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for key, v := range r.All() {
		if !IsDefined(v) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowOf builds a row from alternating key/value pairs. Go values are
// converted with FromAny.
func RowOf(kv ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		r.Set(key, FromAny(kv[i+1]))
	}
	return r
}

// FromAny converts plain Go values to Values. Unknown types become
// Undefined.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Undefined{}
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(x)
	case int64:
		return Number(x)
	case float64:
		return Number(x)
	default:
		return Undefined{}
	}
}

// ToAny converts a value tree to plain maps and slices, the shape expected
// by generic JSON tooling. Field order is lost.
func ToAny(v Value) any {
	switch x := v.(type) {
	case nil, Undefined:
		return nil
	case String:
		return string(x)
	case Number:
		if x.Integral() {
			return int64(x)
		}
		return float64(x)
	case Bool:
		return bool(x)
	case Reference:
		if !x.Valid {
			return map[string]any{"id": nil}
		}
		return map[string]any{"id": x.ID}
	case References:
		out := make([]any, len(x))
		for i, ref := range x {
			out[i] = ToAny(ref)
		}
		return out
	case Relation:
		return map[string]any{string(x.Op): ToAny(x.Target)}
	case *Bucket:
		return map[string]any{"create": RowsToAny(x.Create)}
	case *Row:
		out := make(map[string]any, x.Len())
		for key, field := range x.All() {
			if IsDefined(field) {
				out[key] = ToAny(field)
			}
		}
		return out
	}
	return nil
}

func RowsToAny(rows []*Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = ToAny(r)
	}
	return out
}
