package recipe

import "fmt"

// Default shell used for instructions when the recipe does not set one.
const DefaultShell = "/bin/sh"

// A declarative build recipe: an ordered sequence of steps plus optional
// plan-wide settings.
//
// The shell and environment apply to every instruction in the rendered plan.
// Environment values are templates and are resolved during rendering.
type Recipe struct {
	Shell string            `yaml:"shell,omitempty"`
	Env   map[string]string `yaml:"env,omitempty"`
	Steps []Step            `yaml:"steps"`
}

// A single node in a recipe.
//
// A step is either an instruction (Run set, possibly containing placeholders)
// or a conditional block (When set, guarding the Then steps and an optional
// Else branch). Exactly one of the two forms is valid.
type Step struct {
	Run  string     `yaml:"run,omitempty"`
	When *Predicate `yaml:"when,omitempty"`
	Then []Step     `yaml:"then,omitempty"`
	Else []Step     `yaml:"else,omitempty"`
}

// A membership test over the parameter set, guarding a conditional step.
//
// Exactly one of the three kinds must be set: Equals (exact string match),
// Contains (substring match), or Defined (the parameter exists, regardless
// of value). Equals and Contains require the parameter to be present when
// the predicate is evaluated; Defined does not.
type Predicate struct {
	Param    string  `yaml:"param"`
	Equals   *string `yaml:"equals,omitempty"`
	Contains *string `yaml:"contains,omitempty"`
	Defined  bool    `yaml:"defined,omitempty"`
}

// Checks the recipe for structural well-formedness.
//
// A recipe is well-formed when every step is either an instruction or a
// conditional, every conditional carries exactly one predicate kind, and
// every conditional has a non-empty then branch. Placeholder resolution is
// not checked here; that happens during rendering.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: recipe has no steps", ErrInvalidRecipe)
	}
	return validateSteps(r.Steps, "steps")
}

// Validates a step sequence, prefixing errors with the position path.
func validateSteps(steps []Step, path string) error {
	for i, step := range steps {
		if err := step.validate(fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Validates a single step at the given position path.
func (s *Step) validate(path string) error {
	switch {
	case s.Run != "" && s.When != nil:
		return fmt.Errorf("%w: %s: step has both run and when", ErrInvalidRecipe, path)

	case s.Run != "":
		if len(s.Then) > 0 || len(s.Else) > 0 {
			return fmt.Errorf("%w: %s: run step has branches", ErrInvalidRecipe, path)
		}
		return nil

	case s.When != nil:
		if err := s.When.validate(path); err != nil {
			return err
		}
		if len(s.Then) == 0 {
			return fmt.Errorf("%w: %s: conditional has an empty then branch", ErrInvalidRecipe, path)
		}
		if err := validateSteps(s.Then, path+".then"); err != nil {
			return err
		}
		return validateSteps(s.Else, path+".else")

	default:
		return fmt.Errorf("%w: %s: step has neither run nor when", ErrInvalidRecipe, path)
	}
}

// Validates that the predicate names a parameter and carries exactly one kind.
func (p *Predicate) validate(path string) error {
	if p.Param == "" {
		return fmt.Errorf("%w: %s: predicate has no param", ErrInvalidRecipe, path)
	}

	kinds := 0
	if p.Equals != nil {
		kinds++
	}
	if p.Contains != nil {
		kinds++
	}
	if p.Defined {
		kinds++
	}

	if kinds != 1 {
		return fmt.Errorf("%w: %s: predicate must have exactly one of equals, contains, defined", ErrInvalidRecipe, path)
	}
	return nil
}
