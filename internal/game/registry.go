package game

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a fresh, uninitialised session bound to host.
type Factory func(host Host) Session

type Definition struct {
	Kind       Kind
	Title      string
	MinPlayers int
	MaxPlayers int
	// Sizes, when set, restricts the roster to these exact counts.
	Sizes []int
	New   Factory
}

// Accepts reports whether n players may start this kind.
func (d Definition) Accepts(n int) bool {
	if len(d.Sizes) > 0 {
		for _, size := range d.Sizes {
			if n == size {
				return true
			}
		}
		return false
	}
	if n < d.MinPlayers {
		return false
	}
	return d.MaxPlayers <= 0 || n <= d.MaxPlayers
}

type Registry struct {
	defs map[Kind]Definition
}

func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[Kind]Definition, len(defs))}
	for _, d := range defs {
		if d.Kind == "" || d.New == nil {
			return nil, fmt.Errorf("register %q: kind and factory are required", d.Kind)
		}
		if _, dup := r.defs[d.Kind]; dup {
			return nil, fmt.Errorf("register %q: duplicate kind", d.Kind)
		}
		r.defs[d.Kind] = d
	}
	return r, nil
}

func (r *Registry) Lookup(kind Kind) (Definition, error) {
	d, ok := r.defs[NormalizeKind(kind)]
	if !ok {
		return Definition{}, ErrUnknownKind
	}
	return d, nil
}

func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func NormalizeKind(kind Kind) Kind {
	return Kind(strings.ToUpper(strings.TrimSpace(string(kind))))
}
