package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`
shell: /bin/bash
env:
  http_proxy: "{proxy}"
steps:
  - apt-get update
  - run: curl -fSL -o /tmp/package.tgz {package_url}
  - when: {param: build_id, contains: "2020.1"}
    then:
      - run: /tmp/install --edition dev
    else:
      - /tmp/install
`)

	r, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Shell != "/bin/bash" {
		t.Fatalf("shell = %q, want /bin/bash", r.Shell)
	}
	if r.Env["http_proxy"] != "{proxy}" {
		t.Fatalf("env[http_proxy] = %q, want {proxy}", r.Env["http_proxy"])
	}
	if len(r.Steps) != 3 {
		t.Fatalf("len(steps) = %d, want 3", len(r.Steps))
	}

	if r.Steps[0].Run != "apt-get update" {
		t.Fatalf("steps[0].run = %q, want shorthand instruction", r.Steps[0].Run)
	}

	cond := r.Steps[2]
	if cond.When == nil {
		t.Fatal("steps[2] has no predicate")
	}
	if cond.When.Param != "build_id" {
		t.Fatalf("predicate param = %q, want build_id", cond.When.Param)
	}
	if cond.When.Contains == nil || *cond.When.Contains != "2020.1" {
		t.Fatalf("predicate contains = %v, want 2020.1", cond.When.Contains)
	}
	if len(cond.Then) != 1 || len(cond.Else) != 1 {
		t.Fatalf("branches = %d/%d, want 1/1", len(cond.Then), len(cond.Else))
	}
	if cond.Else[0].Run != "/tmp/install" {
		t.Fatalf("else[0].run = %q, want shorthand instruction", cond.Else[0].Run)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("steps: ["))
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("error = %v, want ErrInvalidRecipe", err)
	}
}

func TestParseRejectsInvalidStructure(t *testing.T) {
	data := []byte(`
steps:
  - when: {param: a, defined: true}
`)
	_, err := Parse(data)
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("error = %v, want ErrInvalidRecipe", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	if err := os.WriteFile(path, []byte("steps:\n  - echo hi\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Steps) != 1 {
		t.Fatalf("len(steps) = %d, want 1", len(r.Steps))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("error = %v, want ErrInvalidRecipe", err)
	}
}
