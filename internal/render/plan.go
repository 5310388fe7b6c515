package render

import "slices"

// A rendered plan: the flat, concrete instruction sequence produced from a
// recipe, plus the shell and environment that apply to every instruction.
//
// A plan has no remaining structure. It is created fresh per render call and
// is safe to execute concurrently with other plans.
type Plan struct {
	Shell        string   // Shell that runs each instruction.
	Env          []string // Environment as sorted "key=value" entries.
	Instructions []string // Concrete instructions, in execution order.
}

// Reports whether two plans are equal by value.
func (p *Plan) Equal(other *Plan) bool {
	return p.Shell == other.Shell &&
		slices.Equal(p.Env, other.Env) &&
		slices.Equal(p.Instructions, other.Instructions)
}
