package lineage

import "fmt"

// DefaultYearThreshold is the conversion year FilterYearAfter callers use
// when no threshold is configured.
const DefaultYearThreshold = 1980

// Vampire is one node of a lineage tree.
// The creator link is a back-reference for traversal only; a tree is owned
// through its root and the offspring slices.
type Vampire struct {
	Name          string
	YearConverted int

	offspring []*Vampire
	creator   *Vampire
}

// New returns a standalone vampire with no creator and no offspring.
// Name uniqueness within a tree is the caller's concern.
func New(name string, yearConverted int) *Vampire {
	return &Vampire{Name: name, YearConverted: yearConverted}
}

// AddOffspring attaches child as the newest offspring of v.
// It refuses children that already have a creator and children that would
// close a cycle; v is left unchanged in both cases.
func (v *Vampire) AddOffspring(child *Vampire) error {
	if child == nil {
		return fmt.Errorf("add offspring to %q: nil child", v.Name)
	}
	if child.creator != nil {
		return fmt.Errorf("add %q to %q: %w (creator %q)", child.Name, v.Name, ErrAlreadyAttached, child.creator.Name)
	}
	for a := v; a != nil; a = a.creator {
		if a == child {
			return fmt.Errorf("add %q to %q: %w", child.Name, v.Name, ErrCycle)
		}
	}
	v.offspring = append(v.offspring, child)
	child.creator = v
	return nil
}

// MustAddOffspring is AddOffspring for fixtures; it panics on error.
func (v *Vampire) MustAddOffspring(child *Vampire) *Vampire {
	if err := v.AddOffspring(child); err != nil {
		panic(err)
	}
	return child
}

// Creator returns the vampire that created v, or nil for a root.
func (v *Vampire) Creator() *Vampire { return v.creator }

// IsRoot reports whether v has no creator.
func (v *Vampire) IsRoot() bool { return v.creator == nil }

// Offspring returns a copy of v's direct offspring in creation order.
func (v *Vampire) Offspring() []*Vampire {
	out := make([]*Vampire, len(v.offspring))
	copy(out, v.offspring)
	return out
}

// OffspringCount returns the number of vampires v created directly.
func (v *Vampire) OffspringCount() int { return len(v.offspring) }

// GenerationDepth returns the number of creator links between v and the root.
func (v *Vampire) GenerationDepth() int {
	depth := 0
	for a := v.creator; a != nil; a = a.creator {
		depth++
	}
	return depth
}

// IsMoreSeniorThan reports whether v is closer to the root than other.
// Vampires of the same generation are not senior to each other.
func (v *Vampire) IsMoreSeniorThan(other *Vampire) bool {
	return v.GenerationDepth() < other.GenerationDepth()
}

// Root returns the original vampire of v's tree.
func (v *Vampire) Root() *Vampire {
	r := v
	for r.creator != nil {
		r = r.creator
	}
	return r
}

// Lineage returns the path from the root down to v, both included.
func (v *Vampire) Lineage() []*Vampire {
	var path []*Vampire
	for a := v; a != nil; a = a.creator {
		path = append(path, a)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits v and its descendants in pre-order, offspring in creation order.
// Returning false from fn stops the walk; Walk reports whether it ran to the end.
func (v *Vampire) Walk(fn func(*Vampire) bool) bool {
	if !fn(v) {
		return false
	}
	for _, child := range v.offspring {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// FindByName returns the first vampire named name in a pre-order walk from v.
// With duplicate names the first pre-order match wins.
func (v *Vampire) FindByName(name string) (*Vampire, bool) {
	var found *Vampire
	v.Walk(func(n *Vampire) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// TotalDescendants returns the size of v's subtree, v excluded.
func (v *Vampire) TotalDescendants() int {
	total := 0
	for _, child := range v.offspring {
		total += 1 + child.TotalDescendants()
	}
	return total
}

// FilterYearAfter returns, in pre-order, every vampire of v's subtree
// (v included) converted strictly after threshold.
func (v *Vampire) FilterYearAfter(threshold int) []*Vampire {
	var out []*Vampire
	v.Walk(func(n *Vampire) bool {
		if n.YearConverted > threshold {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (v *Vampire) String() string {
	return fmt.Sprintf("%s (%d)", v.Name, v.YearConverted)
}
