package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("config validation errors")

// Validate checks the config for:
//   - Required fields and engine bounds (struct tags)
//   - Duplicate lineage IDs
//   - Duplicate vampire names inside one lineage; name lookup and ancestor
//     matching assume names are unique per tree
func Validate(cfg *LineageConfig) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			errs = append(errs, formatFieldError(fe))
		}
	}

	ids := make(map[string]int)
	for i, ln := range cfg.Lineages {
		if ln.ID == "" {
			continue // reported by the struct check
		}
		if prev, ok := ids[ln.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate lineage id %q (lineages[%d] and lineages[%d])", ln.ID, prev, i))
		} else {
			ids[ln.ID] = i
		}
		seen := make(map[string]string)
		validateVampire(ln.Root, ln.ID, seen, &errs)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateVampire(def VampireDef, loc string, seen map[string]string, errs *[]string) {
	if def.Name == "" {
		return
	}
	here := loc + "/" + def.Name
	if prev, ok := seen[def.Name]; ok {
		*errs = append(*errs, fmt.Sprintf("duplicate vampire name %q (first seen at %s, again at %s)", def.Name, prev, here))
	} else {
		seen[def.Name] = here
	}
	for _, child := range def.Offspring {
		validateVampire(child, here, seen, errs)
	}
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "LineageConfig.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
