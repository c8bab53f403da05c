package lineage_test

import (
	"errors"
	"testing"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
)

func testConfig() *config.LineageConfig {
	return &config.LineageConfig{
		Version: "v1",
		Lineages: []config.Lineage{
			{
				ID:      "ansel",
				Enabled: true,
				Root: config.VampireDef{
					Name: "Ansel", YearConverted: 1500,
					Offspring: []config.VampireDef{
						{Name: "Timothy", YearConverted: 1825, Offspring: []config.VampireDef{
							{Name: "Sarah", YearConverted: 1885},
						}},
						{Name: "Andrew", YearConverted: 1895},
					},
				},
			},
			{
				ID:      "vlad",
				Enabled: true,
				Root: config.VampireDef{
					Name: "Vlad", YearConverted: 1400,
					Offspring: []config.VampireDef{{Name: "Ileana", YearConverted: 1990}},
				},
			},
			{
				ID:      "dormant",
				Enabled: false,
				Root:    config.VampireDef{Name: "Sleeper", YearConverted: 900},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	f, err := lineage.Build(testConfig())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if got := f.IDs(); !equalNames(got, []string{"ansel", "vlad"}) {
		t.Errorf("IDs = %v, want [ansel vlad]", got)
	}
	if f.Len() != 2 || f.NodeCount() != 6 {
		t.Errorf("Len/NodeCount = %d/%d, want 2/6", f.Len(), f.NodeCount())
	}
	if _, ok := f.Root("dormant"); ok {
		t.Errorf("disabled lineage should not be built")
	}

	root, ok := f.Root("ansel")
	if !ok {
		t.Fatalf("ansel lineage missing")
	}
	sarah, ok := root.FindByName("Sarah")
	if !ok {
		t.Fatalf("Sarah missing")
	}
	if sarah.GenerationDepth() != 2 || sarah.YearConverted != 1885 {
		t.Errorf("Sarah = depth %d year %d", sarah.GenerationDepth(), sarah.YearConverted)
	}
	if got := names(root.Offspring()); !equalNames(got, []string{"Timothy", "Andrew"}) {
		t.Errorf("offspring order = %v", got)
	}
}

func TestForest_MembersAndSearch(t *testing.T) {
	f, err := lineage.Build(testConfig())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	members, ok := f.Members("ansel")
	if !ok {
		t.Fatalf("ansel lineage missing")
	}
	if got := names(members); !equalNames(got, []string{"Andrew", "Ansel", "Sarah", "Timothy"}) {
		t.Errorf("Members = %v, want sorted by name", got)
	}
	found, _ := f.Search("ansel", "An")
	if got := names(found); !equalNames(got, []string{"Andrew", "Ansel"}) {
		t.Errorf("Search(An) = %v", got)
	}
	found, _ = f.Search("ansel", "Z")
	if len(found) != 0 {
		t.Errorf("Search(Z) = %v, want empty", names(found))
	}
	if _, ok := f.Members("nope"); ok {
		t.Errorf("unknown lineage should report !ok")
	}
}

func TestForest_AddReplaces(t *testing.T) {
	f := lineage.NewForest()
	f.Add("x", lineage.New("A", 1))
	root := lineage.New("B", 2)
	root.MustAddOffspring(lineage.New("C", 3))
	f.Add("x", root)
	if f.Len() != 1 || f.NodeCount() != 2 {
		t.Errorf("Len/NodeCount = %d/%d, want 1/2", f.Len(), f.NodeCount())
	}
}

func TestBuildTree(t *testing.T) {
	root, err := lineage.BuildTree(config.VampireDef{
		Name: "Root", YearConverted: 1,
		Offspring: []config.VampireDef{{Name: "Child", YearConverted: 2}},
	})
	if err != nil {
		t.Fatalf("BuildTree error: %v", err)
	}
	if root.TotalDescendants() != 1 {
		t.Errorf("descendants = %d, want 1", root.TotalDescendants())
	}
	_, err = lineage.ClosestCommonAncestor(root, lineage.New("Other", 3))
	if !errors.Is(err, lineage.ErrNoCommonAncestor) {
		t.Errorf("err = %v, want ErrNoCommonAncestor", err)
	}
}
