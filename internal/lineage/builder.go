package lineage

import (
	"fmt"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
)

// Build constructs a Forest from a validated LineageConfig.
// Disabled lineages are skipped.
func Build(cfg *config.LineageConfig) (*Forest, error) {
	f := NewForest()
	for _, ln := range cfg.Lineages {
		if !ln.Enabled {
			continue
		}
		root, err := BuildTree(ln.Root)
		if err != nil {
			return nil, fmt.Errorf("lineage %s: %w", ln.ID, err)
		}
		f.Add(ln.ID, root)
	}
	return f, nil
}

// BuildTree creates the vampire described by def and, recursively, its offspring.
func BuildTree(def config.VampireDef) (*Vampire, error) {
	v := New(def.Name, def.YearConverted)
	if err := buildOffspring(v, def.Offspring); err != nil {
		return nil, err
	}
	return v, nil
}

func buildOffspring(creator *Vampire, defs []config.VampireDef) error {
	for _, def := range defs {
		child := New(def.Name, def.YearConverted)
		if err := creator.AddOffspring(child); err != nil {
			return err
		}
		if err := buildOffspring(child, def.Offspring); err != nil {
			return fmt.Errorf("%s: %w", def.Name, err)
		}
	}
	return nil
}
