package internal

import (
	"fmt"
	"reflect"
)

// RefCounter tracks the number of live references to objects of reference
// types. Decrease is the only path by which an object's Type is asked to
// delete it. The counter is not a tracing collector, so objects which refer to
// each other in a cycle are never deleted.
//
// A RefCounter belongs to one VM and must not be used concurrently.
type RefCounter struct {
	counts map[uintptr]*refEntry
}

// refEntry is the count for a single object. The entry holds the object so
// that it can be handed to its type's delete hook.
type refEntry struct {
	n   int
	obj interface{}
	typ *Type
}

// NewRefCounter creates an empty reference counter.
func NewRefCounter() *RefCounter {
	return &RefCounter{counts: make(map[uintptr]*refEntry)}
}

// refKey returns the address identifying an object. Objects which are not
// pointers, or are nil pointers, have no address. Neither do pointers to
// zero-size values, since distinct ones may share an address.
func refKey(obj interface{}) (uintptr, bool) {
	if obj == nil {
		return 0, false
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	}
	return 0, false
}

// Register adds obj to the counter with a count of zero, owned by typ. If obj
// is already registered, its count and owner are unchanged. Returns false if
// obj has no address.
func (c *RefCounter) Register(obj interface{}, typ *Type) bool {
	k, ok := refKey(obj)
	if !ok {
		return false
	}
	if _, ok := c.counts[k]; !ok {
		c.counts[k] = &refEntry{obj: obj, typ: typ}
	}
	return true
}

// IsRegistered returns whether obj has a counter entry.
func (c *RefCounter) IsRegistered(obj interface{}) bool {
	k, ok := refKey(obj)
	if !ok {
		return false
	}
	_, ok = c.counts[k]
	return ok
}

// Increase increments the count of a registered object. It does nothing for
// unregistered or nil objects.
func (c *RefCounter) Increase(obj interface{}) {
	k, ok := refKey(obj)
	if !ok {
		return
	}
	if e := c.counts[k]; e != nil {
		e.n++
	}
}

// Decrease decrements the count of a registered object. If the count reaches
// zero, the object's type deletes it and the entry is removed. It does nothing
// for unregistered or nil objects, or for objects whose count is already zero.
// Returns true if the object was deleted.
func (c *RefCounter) Decrease(obj interface{}) bool {
	k, ok := refKey(obj)
	if !ok {
		return false
	}
	e := c.counts[k]
	if e == nil || e.n <= 0 {
		return false
	}
	e.n--
	if e.n > 0 {
		return false
	}
	delete(c.counts, k)
	if e.typ != nil {
		e.typ.deleteObject(e.obj)
	}
	return true
}

// Reset sets the count of a registered object to zero without deleting it.
// This is used when ownership of the object is deliberately abandoned.
func (c *RefCounter) Reset(obj interface{}) {
	k, ok := refKey(obj)
	if !ok {
		return
	}
	if e := c.counts[k]; e != nil {
		e.n = 0
	}
}

// Count returns the count of obj and whether it is registered.
func (c *RefCounter) Count(obj interface{}) (int, bool) {
	k, ok := refKey(obj)
	if !ok {
		return 0, false
	}
	e := c.counts[k]
	if e == nil {
		return 0, false
	}
	return e.n, true
}

// Len returns the number of registered objects.
func (c *RefCounter) Len() int {
	return len(c.counts)
}

// String summarizes the counter for debugging.
func (c *RefCounter) String() string {
	return fmt.Sprintf("RefCounter(%d live)", len(c.counts))
}
