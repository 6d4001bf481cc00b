package raw

import (
	"fmt"
	"sort"
)

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
}

// Table holds indirect objects keyed by reference and hands out new
// references in increasing order.
type Table struct {
	objects map[ObjectRef]Object
	next    int
}

// NewTable returns an empty object table whose first reference is 1 0 R.
func NewTable() *Table {
	return &Table{objects: make(map[ObjectRef]Object), next: 1}
}

// Reserve allocates a reference without assigning an object yet.
func (t *Table) Reserve() ObjectRef {
	ref := ObjectRef{Num: t.next}
	t.next++
	return ref
}

// Add allocates a reference for obj.
func (t *Table) Add(obj Object) ObjectRef {
	ref := t.Reserve()
	t.objects[ref] = obj
	return ref
}

// Set assigns obj to a previously reserved reference.
func (t *Table) Set(ref ObjectRef, obj Object) { t.objects[ref] = obj }

// Get returns the object stored under ref.
func (t *Table) Get(ref ObjectRef) (Object, bool) {
	obj, ok := t.objects[ref]
	return obj, ok
}

// Len reports the number of assigned objects.
func (t *Table) Len() int { return len(t.objects) }

// Size is the value of the trailer /Size entry.
func (t *Table) Size() int { return t.next }

// Refs returns assigned references in ascending object number order.
func (t *Table) Refs() []ObjectRef {
	refs := make([]ObjectRef, 0, len(t.objects))
	for ref := range t.objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
	return refs
}
