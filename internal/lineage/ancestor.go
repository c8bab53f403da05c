package lineage

import "fmt"

// ClosestCommonAncestor returns the deepest vampire that is an ancestor of,
// or the same as, both a and b.
//
// When one vampire is a direct ancestor of the other, the ancestor is
// returned. A root passed on either side is returned as is, without looking
// for a deeper answer. Vampires from different trees yield ErrNoCommonAncestor.
func ClosestCommonAncestor(a, b *Vampire) (*Vampire, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("closest common ancestor: nil vampire")
	}
	switch {
	case a.creator == nil:
		return sharedRoot(a, b)
	case b.creator == nil:
		return sharedRoot(b, a)
	case a == b:
		return a, nil
	}

	x, y := a, b
	// Walk the deeper side up until both sit on the same generation.
	da, db := a.GenerationDepth(), b.GenerationDepth()
	for da != db {
		if a.creator == b {
			return b, nil
		}
		if b.creator == a {
			return a, nil
		}
		if da > db {
			a, da = a.creator, da-1
		} else {
			b, db = b.creator, db-1
		}
	}

	for a.creator != b.creator {
		a, b = a.creator, b.creator
	}
	if a.creator == nil {
		return nil, fmt.Errorf("%q and %q: %w", x.Name, y.Name, ErrNoCommonAncestor)
	}
	return a.creator, nil
}

func sharedRoot(root, other *Vampire) (*Vampire, error) {
	if other.Root() != root {
		return nil, fmt.Errorf("%q and %q: %w", root.Name, other.Name, ErrNoCommonAncestor)
	}
	return root, nil
}
