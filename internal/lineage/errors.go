package lineage

import "errors"

var (
	// ErrNotFound is returned when a name does not resolve inside a lineage.
	ErrNotFound = errors.New("vampire not found")
	// ErrNoCommonAncestor is returned for vampires of disjoint trees.
	ErrNoCommonAncestor = errors.New("no common ancestor")
	// ErrAlreadyAttached is returned when the offspring already has a creator.
	ErrAlreadyAttached = errors.New("offspring already has a creator")
	// ErrCycle is returned when attaching would make a vampire its own ancestor.
	ErrCycle = errors.New("offspring is an ancestor of its creator")
)
