package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kilnhq/kiln/internal/paths"
	"github.com/kilnhq/kiln/internal/recipe"
	"github.com/kilnhq/kiln/internal/render"
)

// Flags shared by the commands that render a recipe.
type planFlags struct {
	File   string            `arg:"" help:"Recipe file. A bare name is also looked up in the config directory." placeholder:"RECIPE"`
	Set    map[string]string `help:"Set a build parameter (repeatable)." placeholder:"KEY=VALUE"`
	Params string            `help:"YAML file of build parameters. Values from --set take precedence." placeholder:"PATH"`
}

// Loads the recipe and parameters and renders the plan.
func (f *planFlags) plan() (*render.Plan, error) {
	rec, err := recipe.Load(f.recipePath())
	if err != nil {
		return nil, err
	}

	params, err := f.parameters()
	if err != nil {
		return nil, err
	}

	return render.Render(rec, params)
}

// Resolves the recipe argument to a file path.
//
// A name without a path separator that does not exist in the working
// directory is looked up in the user's config directory.
func (f *planFlags) recipePath() string {
	if strings.ContainsRune(f.File, filepath.Separator) {
		return f.File
	}
	if _, err := os.Stat(f.File); err == nil {
		return f.File
	}

	fallback := filepath.Join(paths.Config(), f.File)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return f.File
}

// Builds the parameter set: the parameter file first, --set flags layered
// on top.
func (f *planFlags) parameters() (recipe.Params, error) {
	params := recipe.Params{}

	if f.Params != "" {
		loaded, err := recipe.LoadParams(f.Params)
		if err != nil {
			return nil, err
		}
		params = loaded
	}

	return params.Merge(recipe.Params(f.Set)), nil
}
