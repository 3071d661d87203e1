package object

import "fmt"

// Registry indexes every object in the simulation by id. Iteration visits
// objects in insertion order so per-tick processing stays deterministic.
type Registry struct {
	objects map[ID]Object
	order   []ID
	nextID  ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[ID]Object), nextID: 1}
}

// NextID reserves a fresh object id.
//
// Postcondition: the returned id is valid and never reused.
func (r *Registry) NextID() ID {
	id := r.nextID
	r.nextID++
	return id
}

// Add registers obj.
//
// Precondition: obj's id is valid and not already registered.
func (r *Registry) Add(obj Object) {
	id := obj.ID()
	if !id.IsValid() {
		panic("object: Registry.Add precondition violated: invalid id")
	}
	if _, exists := r.objects[id]; exists {
		panic(fmt.Sprintf("object: Registry.Add precondition violated: duplicate id %d", id))
	}
	r.objects[id] = obj
	r.order = append(r.order, id)
}

// Get returns the object with id.
func (r *Registry) Get(id ID) (Object, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// Creature returns the creature with id, false when the id is unknown or
// names a non-creature.
func (r *Registry) Creature(id ID) (*Creature, bool) {
	obj, ok := r.objects[id]
	if !ok {
		return nil, false
	}
	c, ok := obj.(*Creature)
	return c, ok
}

// Each calls fn for every registered object in insertion order.
func (r *Registry) Each(fn func(Object)) {
	for _, id := range r.order {
		fn(r.objects[id])
	}
}
