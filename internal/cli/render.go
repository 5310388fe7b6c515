package cli

import (
	"context"
	"fmt"
)

// Represents the 'kiln render' command.
type RenderCmd struct {
	planFlags

	Env bool `help:"Also print the plan environment."`
}

// Executes the render command.
//
// Renders the recipe and prints the concrete instructions, one per line,
// without executing anything. Useful for inspecting what a parameter set
// selects before running a build.
func (c *RenderCmd) Run(ctx context.Context) error {
	plan, err := c.plan()
	if err != nil {
		return err
	}

	if c.Env {
		for _, entry := range plan.Env {
			fmt.Println("env " + entry)
		}
	}

	for _, instruction := range plan.Instructions {
		fmt.Println(instruction)
	}
	return nil
}
