package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kilnhq/kiln/internal/recipe"
)

// Resolves a recipe against a parameter set into a flat plan.
//
// Steps are walked depth-first in document order. Instruction templates are
// expanded, conditionals are evaluated exactly once, and only the selected
// branch is visited, so placeholders on the unselected branch may reference
// parameters absent from the set. Rendering is pure: the same recipe and
// parameters always produce the same plan, and a failed render produces no
// partial plan.
func Render(r *recipe.Recipe, params recipe.Params) (*Plan, error) {
	shell := r.Shell
	if shell == "" {
		shell = recipe.DefaultShell
	}

	env, err := renderEnv(r.Env, params)
	if err != nil {
		return nil, err
	}

	instructions, err := renderSteps(nil, r.Steps, params)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Shell:        shell,
		Env:          env,
		Instructions: instructions,
	}, nil
}

// Walks a step sequence, appending rendered instructions to the accumulator.
func renderSteps(acc []string, steps []recipe.Step, params recipe.Params) ([]string, error) {
	for _, step := range steps {
		var err error
		acc, err = renderStep(acc, step, params)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Renders a single step: expands an instruction template or selects and
// recurses into a conditional branch.
func renderStep(acc []string, step recipe.Step, params recipe.Params) ([]string, error) {
	if step.Run != "" {
		instr, err := expand(step.Run, params)
		if err != nil {
			return nil, err
		}
		return append(acc, instr), nil
	}

	if step.When == nil {
		return nil, fmt.Errorf("%w: step has neither run nor when", recipe.ErrInvalidRecipe)
	}

	selected, err := eval(step.When, params)
	if err != nil {
		return nil, err
	}

	if selected {
		return renderSteps(acc, step.Then, params)
	}
	return renderSteps(acc, step.Else, params)
}

// Evaluates a predicate against the parameter set.
//
// Equals and contains tests require the parameter to be present; a defined
// test treats absence as false rather than an error.
func eval(p *recipe.Predicate, params recipe.Params) (bool, error) {
	value, ok := params.Lookup(p.Param)

	switch {
	case p.Defined:
		return ok, nil
	case !ok:
		return false, fmt.Errorf("%w: predicate references %q", ErrUnresolvedParameter, p.Param)
	case p.Equals != nil:
		return value == *p.Equals, nil
	case p.Contains != nil:
		return strings.Contains(value, *p.Contains), nil
	}

	// Unreachable for a validated recipe.
	return false, fmt.Errorf("%w: predicate on %q has no kind", ErrMalformedTemplate, p.Param)
}

// Expands the plan environment from the recipe's env templates.
//
// Entries are rendered with the same substitution rules as instructions and
// returned as sorted "key=value" strings so the plan is deterministic.
func renderEnv(env map[string]string, params recipe.Params) ([]string, error) {
	rendered := make([]string, 0, len(env))
	for k, v := range env {
		value, err := expand(v, params)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k, err)
		}
		rendered = append(rendered, k+"="+value)
	}

	slices.Sort(rendered)
	return rendered, nil
}
