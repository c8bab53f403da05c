package lineage

import (
	"strings"

	"github.com/tidwall/btree"
)

// Forest holds named lineages. It is never mutated after Build; a reload
// builds a new Forest and the owner swaps it in.
type Forest struct {
	roots map[string]*Vampire
	order []string                           // lineage ids in config order
	index map[string]*btree.BTreeG[*Vampire] // lineage id → members by name
	nodes int
}

// NewForest allocates an empty Forest.
func NewForest() *Forest {
	return &Forest{
		roots: make(map[string]*Vampire),
		index: make(map[string]*btree.BTreeG[*Vampire]),
	}
}

func byName(a, b *Vampire) bool { return a.Name < b.Name }

// Add registers root under id and indexes every member of its tree.
// A later Add with the same id replaces the earlier lineage.
func (f *Forest) Add(id string, root *Vampire) {
	if old, ok := f.roots[id]; ok {
		f.nodes -= 1 + old.TotalDescendants()
	} else {
		f.order = append(f.order, id)
	}
	idx := btree.NewBTreeG[*Vampire](byName)
	root.Walk(func(v *Vampire) bool {
		// Keep the first pre-order vampire for a name, matching FindByName.
		if _, dup := idx.Get(v); !dup {
			idx.Set(v)
		}
		return true
	})
	f.roots[id] = root
	f.index[id] = idx
	f.nodes += 1 + root.TotalDescendants()
}

// Root returns the original vampire of lineage id.
func (f *Forest) Root(id string) (*Vampire, bool) {
	r, ok := f.roots[id]
	return r, ok
}

// IDs returns lineage ids in registration order.
func (f *Forest) IDs() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Len returns the number of lineages.
func (f *Forest) Len() int { return len(f.order) }

// NodeCount returns the total number of vampires across all lineages.
func (f *Forest) NodeCount() int { return f.nodes }

// Members returns the vampires of lineage id sorted by name.
func (f *Forest) Members(id string) ([]*Vampire, bool) {
	return f.Search(id, "")
}

// Search returns the vampires of lineage id whose name starts with prefix,
// sorted by name.
func (f *Forest) Search(id, prefix string) ([]*Vampire, bool) {
	idx, ok := f.index[id]
	if !ok {
		return nil, false
	}
	out := make([]*Vampire, 0)
	idx.Ascend(&Vampire{Name: prefix}, func(v *Vampire) bool {
		if !strings.HasPrefix(v.Name, prefix) {
			return false
		}
		out = append(out, v)
		return true
	})
	return out, true
}
