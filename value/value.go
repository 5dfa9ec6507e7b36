// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package value implements the dynamic, tagged-union Value exchanged between
// the control thread and graph nodes.
//
// Value intentionally mirrors a scripting-layer value, because that is what
// it is: the wire format a non-realtime control thread uses to describe
// CREATE_NODE/SET_PROPERTY instructions and the events nodes emit back. It
// is not RTTI and not an interface{} grab-bag — it is a closed set of nine
// variants (Undefined, Null, Boolean, Number, String, Array, Float32Array,
// Object, Function), and callers are expected to use the typed As* accessors
// at node boundaries rather than switch on Kind() themselves wherever
// avoidable.
//
// The zero Value is Undefined, so a freshly zeroed struct field or map entry
// reads as "not set" without any constructor call.
package value

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindFloat32Array
	KindObject
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindFloat32Array:
		return "float32array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("value.Kind(%d)", int(k))
	}
}

// Function is an opaque control-thread callback. It is never invoked on the
// audio path; the node contract (graphnode.GraphNode) has no Process-time
// use for it.
type Function func(args []Value) Value

// Value is a tagged union over the nine variants listed on the package doc.
// The zero Value is Undefined.
type Value struct {
	kind Kind
	num  float64
	str  string
	arr  []Value
	f32  []float32
	obj  *Object
	fn   Function
}

// Undefined returns the Undefined value. Equivalent to the zero Value.
func Undefined() Value { return Value{} }

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Boolean value.
func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1
	}
	return Value{kind: KindBoolean, num: n}
}

// Number returns a Number value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns an Array value over vs. vs is copied.
func Array(vs ...Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindArray, arr: cp}
}

// Float32Array returns a Float32Array value over xs. xs is copied.
func Float32Array(xs []float32) Value {
	cp := make([]float32, len(xs))
	copy(cp, xs)
	return Value{kind: KindFloat32Array, f32: cp}
}

// Func returns a Function value wrapping fn.
func Func(fn Function) Value { return Value{kind: KindFunction, fn: fn} }

// ObjectValue wraps an *Object as a Value. o is not copied; use Clone if the
// caller intends to keep mutating o after this call.
func ObjectValue(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is the Undefined variant.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v's Boolean payload. ok is false if v is not a Boolean.
func (v Value) AsBool() (b bool, ok bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.num != 0, true
}

// AsNumber returns v's Number payload. ok is false if v is not a Number.
func (v Value) AsNumber() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsString returns v's String payload. ok is false if v is not a String.
func (v Value) AsString() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsArray returns v's Array payload. The returned slice aliases v's storage
// and must not be mutated; call Clone first if mutation is required.
func (v Value) AsArray() (vs []Value, ok bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsFloat32Array returns v's Float32Array payload. The returned slice
// aliases v's storage and must not be mutated.
func (v Value) AsFloat32Array() (xs []float32, ok bool) {
	if v.kind != KindFloat32Array {
		return nil, false
	}
	return v.f32, true
}

// AsObject returns v's Object payload.
func (v Value) AsObject() (o *Object, ok bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// AsFunc returns v's Function payload.
func (v Value) AsFunc() (fn Function, ok bool) {
	if v.kind != KindFunction {
		return nil, false
	}
	return v.fn, true
}

// Clone performs a deep copy of v. Array, Object, and Float32Array payloads
// are copied recursively; Function values are shared (they are opaque
// control-thread callbacks, never mutated).
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		cp := make([]Value, len(v.arr))
		for i, e := range v.arr {
			cp[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: cp}
	case KindFloat32Array:
		cp := make([]float32, len(v.f32))
		copy(cp, v.f32)
		return Value{kind: KindFloat32Array, f32: cp}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal. Undefined and Null
// are distinct states and are never equal to each other, matching the
// taxonomy used by SET_PROPERTY/get_property round-trips.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean, KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindFloat32Array:
		if len(a.f32) != len(b.f32) {
			return false
		}
		for i := range a.f32 {
			if a.f32[i] != b.f32[i] {
				return false
			}
		}
		return true
	case KindObject:
		return a.obj.equal(b.obj)
	case KindFunction:
		return fmt.Sprintf("%p", a.fn) == fmt.Sprintf("%p", b.fn)
	default:
		return false
	}
}

// String renders v for diagnostics. The format is not a stable wire format.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		b, _ := v.AsBool()
		return fmt.Sprintf("%t", b)
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindFloat32Array:
		return fmt.Sprintf("float32[%d]", len(v.f32))
	case KindObject:
		return v.obj.String()
	case KindFunction:
		return "function"
	default:
		return "?"
	}
}
