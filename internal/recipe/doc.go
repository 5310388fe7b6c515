// Package recipe defines the declarative build recipe model.
//
// A recipe is an ordered sequence of steps. Each step is either an
// instruction (an opaque command string, possibly containing {name}
// placeholders) or a conditional block whose predicate is evaluated
// against the parameter set during rendering. Conditionals nest; the
// unselected branch is never visited.
//
// Recipes are parsed from YAML:
//
//	shell: /bin/bash
//	env:
//	  http_proxy: "{proxy}"
//	steps:
//	  - run: apt-get update
//	  - run: curl -fSL -o /tmp/package.tgz {package_url}
//	  - when: {param: build_id, contains: "2020.1"}
//	    then:
//	      - run: /tmp/install --edition dev
//	    else:
//	      - run: /tmp/install
//
// The model is structural only. Placeholders and predicates are resolved
// by the render package; recipes are read-only after construction.
package recipe
