// Package render resolves recipes into executable plans.
//
// Rendering walks the recipe's steps depth-first in document order,
// substituting {name} placeholders from the parameter set and evaluating
// conditional predicates. The result is a [Plan]: a flat ordered list of
// concrete instruction strings with no further structure.
//
// Rendering is deterministic and fail-closed. Any malformed placeholder or
// reference to a missing parameter on the selected path aborts the render
// before a single instruction runs; there is no partial plan and no
// recovery. Branches a conditional does not select are never visited, so
// their placeholders need not be resolvable.
package render
