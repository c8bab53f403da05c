package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
)

// builtin adapts a plain function to Executor.
type builtin struct {
	op       string
	required []string
	run      func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error)
}

func (b *builtin) Op() string { return b.op }

func (b *builtin) Validate(args map[string]interface{}) error {
	for _, key := range b.required {
		if _, err := stringArg(args, key); err != nil {
			return err
		}
	}
	return nil
}

func (b *builtin) Execute(ctx context.Context, root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.Validate(args); err != nil {
		return nil, err
	}
	return b.run(root, args)
}

// RegisterBuiltins registers every built-in op on r.
// yearThreshold is the filter op's default when the request omits "after".
func RegisterBuiltins(r *Registry, yearThreshold int) {
	for _, b := range builtins(yearThreshold) {
		r.Register(b)
	}
}

func builtins(yearThreshold int) []*builtin {
	return []*builtin{
		{op: "find", required: []string{"name"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			v, err := member(root, args, "name")
			if err != nil {
				return nil, err
			}
			return View(v), nil
		}},
		{op: "depth", required: []string{"name"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			v, err := member(root, args, "name")
			if err != nil {
				return nil, err
			}
			return v.GenerationDepth(), nil
		}},
		{op: "offspring", required: []string{"name"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			v, err := member(root, args, "name")
			if err != nil {
				return nil, err
			}
			return v.OffspringCount(), nil
		}},
		{op: "descendants", required: []string{"name"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			v, err := member(root, args, "name")
			if err != nil {
				return nil, err
			}
			return v.TotalDescendants(), nil
		}},
		{op: "lineage", required: []string{"name"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			v, err := member(root, args, "name")
			if err != nil {
				return nil, err
			}
			path := v.Lineage()
			out := make([]string, len(path))
			for i, a := range path {
				out[i] = a.Name
			}
			return out, nil
		}},
		{op: "senior", required: []string{"a", "b"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			a, b, err := pair(root, args)
			if err != nil {
				return nil, err
			}
			return a.IsMoreSeniorThan(b), nil
		}},
		{op: "cca", required: []string{"a", "b"}, run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			a, b, err := pair(root, args)
			if err != nil {
				return nil, err
			}
			anc, err := lineage.ClosestCommonAncestor(a, b)
			if err != nil {
				return nil, err
			}
			return View(anc), nil
		}},
		{op: "filter", run: func(root *lineage.Vampire, args map[string]interface{}) (interface{}, error) {
			after, err := intArg(args, "after", yearThreshold)
			if err != nil {
				return nil, err
			}
			from := root
			if _, ok := args["from"]; ok {
				if from, err = member(root, args, "from"); err != nil {
					return nil, err
				}
			}
			return Views(from.FilterYearAfter(after)), nil
		}},
	}
}

func member(root *lineage.Vampire, args map[string]interface{}, key string) (*lineage.Vampire, error) {
	name, err := stringArg(args, key)
	if err != nil {
		return nil, err
	}
	v, ok := root.FindByName(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, lineage.ErrNotFound)
	}
	return v, nil
}

func pair(root *lineage.Vampire, args map[string]interface{}) (*lineage.Vampire, *lineage.Vampire, error) {
	a, err := member(root, args, "a")
	if err != nil {
		return nil, nil, err
	}
	b, err := member(root, args, "b")
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %q is required", ErrInvalidArgs, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidArgs, key)
	}
	return s, nil
}

// intArg accepts JSON numbers, YAML ints and numeric strings (CLI).
func intArg(args map[string]interface{}, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %q must be a whole number", ErrInvalidArgs, key)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidArgs, key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %q has unsupported type %T", ErrInvalidArgs, key, raw)
	}
}
