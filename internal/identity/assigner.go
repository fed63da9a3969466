package identity

import (
	"strconv"
	"sync"
)

// Assigner hands out slug ids that are unique inside a scope. Use one
// Assigner per domain build so unrelated documents never influence each
// other's ids.
type Assigner struct {
	mu    sync.Mutex
	taken map[string]map[string]struct{}
}

// NewAssigner returns an empty assigner.
func NewAssigner() *Assigner {
	return &Assigner{taken: map[string]map[string]struct{}{}}
}

// Assign returns the slug of title, suffixed with -2, -3, ... when the slug
// was already handed out for scope. Identical call sequences produce
// identical ids.
func (a *Assigner) Assign(scope, title string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.taken == nil {
		a.taken = map[string]map[string]struct{}{}
	}
	used, ok := a.taken[scope]
	if !ok {
		used = map[string]struct{}{}
		a.taken[scope] = used
	}

	base := Slugify(title)
	candidate := base
	for n := 2; ; n++ {
		if _, exists := used[candidate]; !exists {
			break
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	used[candidate] = struct{}{}
	return candidate
}

// Taken reports how many ids were assigned in scope.
func (a *Assigner) Taken(scope string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.taken[scope])
}
