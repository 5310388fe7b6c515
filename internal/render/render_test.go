package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/kilnhq/kiln/internal/recipe"
)

func strptr(s string) *string { return &s }

// Recipe used by the nested conditional tests:
//
//	if mode == "A" { "x"; if sub == "B" { "y" } }
func nestedRecipe() *recipe.Recipe {
	return &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "mode", Equals: strptr("A")},
			Then: []recipe.Step{
				{Run: "x"},
				{
					When: &recipe.Predicate{Param: "sub", Equals: strptr("B")},
					Then: []recipe.Step{{Run: "y"}},
				},
			},
		},
	}}
}

func TestRenderNestedConditionals(t *testing.T) {
	tests := []struct {
		name   string
		params recipe.Params
		want   []string
	}{
		{
			name:   "both selected",
			params: recipe.Params{"mode": "A", "sub": "B"},
			want:   []string{"x", "y"},
		},
		{
			name:   "inner not selected",
			params: recipe.Params{"mode": "A", "sub": "C"},
			want:   []string{"x"},
		},
		{
			name:   "outer not selected",
			params: recipe.Params{"mode": "Z"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Render(nestedRecipe(), tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertInstructions(t, plan, tt.want)
		})
	}
}

func assertInstructions(t *testing.T, plan *Plan, want []string) {
	t.Helper()
	if len(plan.Instructions) != len(want) {
		t.Fatalf("instructions = %v, want %v", plan.Instructions, want)
	}
	for i := range want {
		if plan.Instructions[i] != want[i] {
			t.Fatalf("instructions[%d] = %q, want %q", i, plan.Instructions[i], want[i])
		}
	}
}

func TestRenderSubstitution(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{Run: "curl -o /tmp/pkg.tgz {package_url}"},
		{Run: "tar xzf /tmp/pkg.tgz"},
	}}

	plan, err := Render(r, recipe.Params{"package_url": "https://example.com/p.tgz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{
		"curl -o /tmp/pkg.tgz https://example.com/p.tgz",
		"tar xzf /tmp/pkg.tgz",
	})
}

func TestRenderUnresolvedParameter(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{Run: "install {pkg}"},
	}}

	_, err := Render(r, recipe.Params{})
	if !errors.Is(err, ErrUnresolvedParameter) {
		t.Fatalf("error = %v, want ErrUnresolvedParameter", err)
	}
	if !strings.Contains(err.Error(), `"pkg"`) {
		t.Fatalf("error %q does not name the missing parameter", err)
	}
}

func TestRenderUnselectedBranchNotEvaluated(t *testing.T) {
	// The else branch references a parameter that does not exist; rendering
	// must succeed because the branch is never visited.
	r := &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "mode", Equals: strptr("A")},
			Then: []recipe.Step{{Run: "selected"}},
			Else: []recipe.Step{{Run: "install {never_defined}"}},
		},
	}}

	plan, err := Render(r, recipe.Params{"mode": "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{"selected"})
}

func TestRenderElseBranch(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "mode", Equals: strptr("A")},
			Then: []recipe.Step{{Run: "then"}},
			Else: []recipe.Step{{Run: "else"}},
		},
	}}

	plan, err := Render(r, recipe.Params{"mode": "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{"else"})
}

func TestRenderContainsPredicate(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "build_id", Contains: strptr("2020.1")},
			Then: []recipe.Step{{Run: "match"}},
		},
	}}

	plan, err := Render(r, recipe.Params{"build_id": "openvino-2020.1.023"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{"match"})

	plan, err = Render(r, recipe.Params{"build_id": "openvino-2019.3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{})
}

func TestRenderDefinedPredicate(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "proxy", Defined: true},
			Then: []recipe.Step{{Run: "use proxy"}},
		},
	}}

	// An absent parameter is false, not an error, for a defined test.
	plan, err := Render(r, recipe.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{})

	plan, err = Render(r, recipe.Params{"proxy": "http://proxy:8080"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertInstructions(t, plan, []string{"use proxy"})
}

func TestRenderPredicateUnresolvedParameter(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{
		{
			When: &recipe.Predicate{Param: "mode", Equals: strptr("A")},
			Then: []recipe.Step{{Run: "x"}},
		},
	}}

	_, err := Render(r, recipe.Params{})
	if !errors.Is(err, ErrUnresolvedParameter) {
		t.Fatalf("error = %v, want ErrUnresolvedParameter", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := &recipe.Recipe{
		Shell: "/bin/bash",
		Env: map[string]string{
			"http_proxy":  "{proxy}",
			"https_proxy": "{proxy}",
		},
		Steps: []recipe.Step{
			{Run: "install {pkg}"},
			{
				When: &recipe.Predicate{Param: "pkg", Contains: strptr("open")},
				Then: []recipe.Step{{Run: "post-install"}},
			},
		},
	}
	params := recipe.Params{"pkg": "openvino", "proxy": "http://proxy:8080"}

	first, err := Render(r, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Render(r, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Equal(second) {
		t.Fatalf("repeated renders differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first == second {
		t.Fatal("renders share the same plan value")
	}
}

func TestRenderEnv(t *testing.T) {
	r := &recipe.Recipe{
		Env: map[string]string{
			"https_proxy": "{proxy}",
			"http_proxy":  "{proxy}",
		},
		Steps: []recipe.Step{{Run: "x"}},
	}

	plan, err := Render(r, recipe.Params{"proxy": "http://proxy:8080"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http_proxy=http://proxy:8080", "https_proxy=http://proxy:8080"}
	if len(plan.Env) != 2 || plan.Env[0] != want[0] || plan.Env[1] != want[1] {
		t.Fatalf("env = %v, want %v (sorted)", plan.Env, want)
	}
}

func TestRenderEnvUnresolved(t *testing.T) {
	r := &recipe.Recipe{
		Env:   map[string]string{"http_proxy": "{proxy}"},
		Steps: []recipe.Step{{Run: "x"}},
	}

	_, err := Render(r, recipe.Params{})
	if !errors.Is(err, ErrUnresolvedParameter) {
		t.Fatalf("error = %v, want ErrUnresolvedParameter", err)
	}
}

func TestRenderDefaultShell(t *testing.T) {
	r := &recipe.Recipe{Steps: []recipe.Step{{Run: "x"}}}

	plan, err := Render(r, recipe.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Shell != recipe.DefaultShell {
		t.Fatalf("shell = %q, want %q", plan.Shell, recipe.DefaultShell)
	}

	r.Shell = "/bin/bash"
	plan, err = Render(r, recipe.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Shell != "/bin/bash" {
		t.Fatalf("shell = %q, want /bin/bash", plan.Shell)
	}
}
