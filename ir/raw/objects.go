package raw

import "sort"

// Name object
type NameObj struct{ Val string }

func (n NameObj) Type() string  { return "name" }
func (n NameObj) Value() string { return n.Val }

// Number object
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (n NumberObj) Type() string { return "number" }
func (n NumberObj) Int() int64   { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}
func (n NumberObj) IsInteger() bool { return n.IsInt }

// Boolean object
type BoolObj struct{ V bool }

func (b BoolObj) Type() string { return "boolean" }
func (b BoolObj) Value() bool  { return b.V }

// Null object
type NullObj struct{}

func (n NullObj) Type() string { return "null" }

// String object. Hex strings are written as <...>.
type StringObj struct {
	Bytes []byte
	Hex   bool
}

func (s StringObj) Type() string  { return "string" }
func (s StringObj) Value() []byte { return s.Bytes }
func (s StringObj) IsHex() bool   { return s.Hex }

// Array object
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Type() string { return "array" }
func (a *ArrayObj) Get(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}
func (a *ArrayObj) Len() int        { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// Dictionary object. Keys are serialised in sorted order.
type DictObj struct{ KV map[string]Object }

func (d *DictObj) Type() string { return "dict" }
func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}
func (d *DictObj) Set(key string, value Object) *DictObj {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
	return d
}
func (d *DictObj) Keys() []string {
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
func (d *DictObj) Len() int { return len(d.KV) }

// Stream object. Data is written verbatim; /Length is set by the writer.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) Type() string    { return "stream" }
func (s *StreamObj) RawData() []byte { return s.Data }
func (s *StreamObj) Length() int64   { return int64(len(s.Data)) }

// Reference object
type RefObj struct{ R ObjectRef }

func (r RefObj) Type() string   { return "ref" }
func (r RefObj) Ref() ObjectRef { return r.R }

// Helpers
func Name(v string) NameObj                           { return NameObj{Val: v} }
func Int(i int64) NumberObj                           { return NumberObj{I: i, IsInt: true} }
func Float(f float64) NumberObj                       { return NumberObj{F: f} }
func Bool(v bool) BoolObj                             { return BoolObj{V: v} }
func Str(bytes []byte) StringObj                      { return StringObj{Bytes: bytes} }
func HexStr(bytes []byte) StringObj                   { return StringObj{Bytes: bytes, Hex: true} }
func NewArray(items ...Object) *ArrayObj              { return &ArrayObj{Items: items} }
func Dict() *DictObj                                  { return &DictObj{KV: make(map[string]Object)} }
func NewStream(dict *DictObj, data []byte) *StreamObj { return &StreamObj{Dict: dict, Data: data} }
func Ref(r ObjectRef) RefObj                          { return RefObj{R: r} }

// Floats converts values into a number array.
func Floats(vals ...float64) *ArrayObj {
	arr := &ArrayObj{Items: make([]Object, 0, len(vals))}
	for _, v := range vals {
		arr.Items = append(arr.Items, Float(v))
	}
	return arr
}
