// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package value

import (
	"fmt"
	"strings"
)

// Object is an ordered string->Value mapping. Insertion order is preserved
// across Set calls, matching the "ordered mapping" variant named in the
// wire format.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set stores v under key, appending key to the iteration order on first
// insertion. Set returns o so calls can be chained.
func (o *Object) Set(key string, v Value) *Object {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Delete removes key, if present.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the object's keys in insertion order. The returned slice
// must not be mutated.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of keys in o.
func (o *Object) Len() int { return len(o.keys) }

// Clone performs a deep copy of o.
func (o *Object) Clone() *Object {
	cp := &Object{
		keys: make([]string, len(o.keys)),
		vals: make(map[string]Value, len(o.vals)),
	}
	copy(cp.keys, o.keys)
	for k, v := range o.vals {
		cp.vals[k] = v.Clone()
	}
	return cp
}

func (o *Object) equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for _, k := range o.keys {
		a, ok := o.vals[k]
		if !ok {
			return false
		}
		b, ok := other.vals[k]
		if !ok || !Equal(a, b) {
			return false
		}
	}
	return true
}

// String renders o for diagnostics in insertion order.
func (o *Object) String() string {
	if o == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %v", k, o.vals[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
