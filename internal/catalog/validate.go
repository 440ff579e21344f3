package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Validation error codes (E200-E299)
const (
	ErrSchema            = "E201" // entry violates the CUE schema
	ErrDuplicateID       = "E202" // id repeated within one collection
	ErrBaselineRock      = "E203" // no unlocked baseline rock
	ErrNoOwnedPickaxe    = "E204" // no pickaxe owned at start
	ErrInconsistentEntry = "E205" // entry fields contradict each other
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in a catalog.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	schemaOnce sync.Once
	cueCtx     *cue.Context
	schemaDef  cue.Value
)

func catalogSchema() (*cue.Context, cue.Value) {
	schemaOnce.Do(func() {
		cueCtx = cuecontext.New()
		schemaDef = cueCtx.CompileString(schemaCUE, cue.Filename("schema.cue")).
			LookupPath(cue.ParsePath("#Catalog"))
	})
	return cueCtx, schemaDef
}

// Validate checks a catalog against the CUE schema and the cross-entry
// rules the schema cannot express. Returns all errors found (does not
// fail-fast).
func Validate(c *Catalog) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, validateSchema(c)...)
	errs = append(errs, validateUnique(c)...)

	unlocked := 0
	for _, r := range c.Rocks {
		if r.Unlocked {
			unlocked++
		}
	}
	if unlocked != 1 {
		errs = append(errs, ValidationError{
			Field:   "rocks",
			Message: fmt.Sprintf("exactly one rock must start unlocked, found %d", unlocked),
			Code:    ErrBaselineRock,
		})
	}

	owned := false
	for _, u := range c.Upgrades {
		owned = owned || u.Owned
	}
	if !owned {
		errs = append(errs, ValidationError{
			Field:   "upgrades",
			Message: "at least one pickaxe must start owned",
			Code:    ErrNoOwnedPickaxe,
		})
	}

	for i, m := range c.AutoMiners {
		if m.Cost != m.BaseCost || m.Count != 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("autoMiners[%d]", i),
				Message: "a catalog miner starts with count 0 at its base cost",
				Code:    ErrInconsistentEntry,
			})
		}
	}
	for i, a := range c.Abilities {
		if a.Owned || a.Active || a.CooldownRemaining > 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("abilities[%d]", i),
				Message: "a catalog ability starts unowned and idle",
				Code:    ErrInconsistentEntry,
			})
		}
	}

	return errs
}

// validateSchema unifies the encoded catalog with #Catalog.
func validateSchema(c *Catalog) ValidationErrors {
	ctx, schema := catalogSchema()
	if err := schema.Err(); err != nil {
		return ValidationErrors{{Field: "schema", Message: err.Error(), Code: ErrSchema}}
	}

	v := schema.Unify(ctx.Encode(c))
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out ValidationErrors
	for _, e := range errors.Errors(err) {
		out = append(out, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    ErrSchema,
		})
	}
	return out
}

func validateUnique(c *Catalog) ValidationErrors {
	var errs ValidationErrors
	check := func(collection string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				errs = append(errs, ValidationError{
					Field:   collection,
					Message: fmt.Sprintf("duplicate id %q", id),
					Code:    ErrDuplicateID,
				})
			}
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(c.Rocks))
	for _, r := range c.Rocks {
		ids = append(ids, r.ID)
	}
	check("rocks", ids)

	ids = ids[:0]
	for _, u := range c.Upgrades {
		ids = append(ids, u.ID)
	}
	check("upgrades", ids)

	ids = ids[:0]
	for _, m := range c.AutoMiners {
		ids = append(ids, m.ID)
	}
	check("autoMiners", ids)

	ids = ids[:0]
	for _, s := range c.SpecialUpgrades {
		ids = append(ids, s.ID)
	}
	check("specialUpgrades", ids)

	ids = ids[:0]
	for _, a := range c.Achievements {
		ids = append(ids, a.ID)
	}
	check("achievements", ids)

	ids = ids[:0]
	for _, a := range c.Abilities {
		ids = append(ids, a.ID)
	}
	check("abilities", ids)

	return errs
}
