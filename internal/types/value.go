package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type Kind int

const (
	KindUndefined Kind = iota
	KindString
	KindNumber
	KindBool
	KindReference
	KindReferences
	KindRelation
	KindBucket
	KindRow
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindReference:
		return "reference"
	case KindReferences:
		return "references"
	case KindRelation:
		return "relation"
	case KindBucket:
		return "bucket"
	case KindRow:
		return "row"
	default:
		return "unknown"
	}
}

// Value is a single node of a converted payload. Scalars come straight from
// sheet cells; the remaining kinds are built by the materializer and the
// attacher.
type Value interface {
	Kind() Kind
}

// Undefined marks an empty or missing cell.
type Undefined struct{}

type String string

type Number float64

type Bool bool

// Reference identifies a related record by primary key. Valid is false when
// the cell held something that did not parse as an integer.
type Reference struct {
	ID    int64
	Valid bool
}

type References []Reference

// Relation wraps a Reference or References under an ORM relation operation,
// e.g. {"connect": [{"id": 1}]}.
type Relation struct {
	Op     Operation
	Target Value
}

// Bucket is the {"create": [...]} wrapper that holds nested child rows.
type Bucket struct {
	Create []*Row
}

func (Undefined) Kind() Kind  { return KindUndefined }
func (String) Kind() Kind     { return KindString }
func (Number) Kind() Kind     { return KindNumber }
func (Bool) Kind() Kind       { return KindBool }
func (Reference) Kind() Kind  { return KindReference }
func (References) Kind() Kind { return KindReferences }
func (Relation) Kind() Kind   { return KindRelation }
func (*Bucket) Kind() Kind    { return KindBucket }

// IsDefined reports whether v holds a cell value.
func IsDefined(v Value) bool {
	return v != nil && v.Kind() != KindUndefined
}

// Equal compares two scalar values strictly: kinds must match, and so must
// the values. Compound values are never equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Undefined:
		return true
	case String:
		return x == b.(String)
	case Number:
		return x == b.(Number)
	case Bool:
		return x == b.(Bool)
	}
	return false
}

// Integral reports whether n has no fractional part.
func (n Number) Integral() bool {
	f := float64(n)
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (u Undefined) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (r Reference) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte(`{"id":null}`), nil
	}
	return []byte(`{"id":` + strconv.FormatInt(r.ID, 10) + `}`), nil
}

func (rs References) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Reference(rs))
}

func (r Relation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	key, _ := json.Marshal(string(r.Op))
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	target, err := marshalValue(r.Target)
	if err != nil {
		return nil, err
	}
	buf.Write(target)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Bucket) MarshalJSON() ([]byte, error) {
	rows := b.Create
	if rows == nil {
		rows = []*Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(`{"create":`), data...), '}'), nil
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
