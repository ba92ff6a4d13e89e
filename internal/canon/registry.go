package canon

import (
	"sort"
)

// Collision records distinct external identifiers that share one key.
type Collision struct {
	Key uint64   `json:"key"`
	IDs []string `json:"ids"`
}

// Registry is an explicit identifier-to-key table. It remembers which
// identifier first claimed each key so that later identifiers hashing to the
// same key are reported instead of silently merged.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	canon  Canonicalizer
	owners map[uint64]string
	extra  map[uint64][]string
}

// NewRegistry returns an empty registry using bound.
func NewRegistry(bound uint64) *Registry {
	return &Registry{
		canon:  New(bound),
		owners: make(map[uint64]string),
		extra:  make(map[uint64][]string),
	}
}

// Bound returns the modulus used by the registry.
func (r *Registry) Bound() uint64 {
	return r.canon.Bound
}

// Register canonicalizes id and records it. The second return value is true
// when a different identifier already owns the key.
func (r *Registry) Register(id string) (uint64, bool) {
	key := r.canon.Key(id)
	owner, ok := r.owners[key]
	if !ok {
		r.owners[key] = id
		return key, false
	}
	if owner == id {
		return key, false
	}
	for _, seen := range r.extra[key] {
		if seen == id {
			return key, true
		}
	}
	r.extra[key] = append(r.extra[key], id)
	return key, true
}

// Owner returns the first identifier registered for key.
func (r *Registry) Owner(key uint64) (string, bool) {
	id, ok := r.owners[key]
	return id, ok
}

// Len returns the number of distinct keys registered.
func (r *Registry) Len() int {
	return len(r.owners)
}

// Identifiers returns the number of distinct identifiers registered,
// counting every identifier of a collision.
func (r *Registry) Identifiers() int {
	n := len(r.owners)
	for _, ids := range r.extra {
		n += len(ids)
	}
	return n
}

// Collisions returns every key claimed by more than one identifier, sorted
// by key. The owner is listed first.
func (r *Registry) Collisions() []Collision {
	out := make([]Collision, 0, len(r.extra))
	for key, ids := range r.extra {
		all := make([]string, 0, len(ids)+1)
		all = append(all, r.owners[key])
		all = append(all, ids...)
		out = append(out, Collision{Key: key, IDs: all})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CollisionRate canonicalizes the distinct identifiers in ids and returns the
// fraction that landed on an already-claimed key.
func CollisionRate(ids []string, bound uint64) float64 {
	r := NewRegistry(bound)
	seen := make(map[string]struct{}, len(ids))
	collided := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, c := r.Register(id); c {
			collided++
		}
	}
	if len(seen) == 0 {
		return 0
	}
	return float64(collided) / float64(len(seen))
}

// ExpectedCollisions is the birthday estimate of colliding pairs among n
// distinct identifiers hashed into bound buckets.
func ExpectedCollisions(n int, bound uint64) float64 {
	if bound == 0 {
		return 0
	}
	fn := float64(n)
	return fn * (fn - 1) / (2 * float64(bound))
}
