package render

import (
	"errors"
	"strings"
	"testing"
)

func TestExpand(t *testing.T) {
	params := map[string]string{
		"pkg":   "openvino",
		"url":   "https://example.com/p.tgz",
		"empty": "",
	}

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  error
	}{
		{
			name:     "no placeholders",
			template: "apt-get update",
			want:     "apt-get update",
		},
		{
			name:     "single placeholder",
			template: "install {pkg}",
			want:     "install openvino",
		},
		{
			name:     "multiple placeholders",
			template: "curl -o {pkg}.tgz {url}",
			want:     "curl -o openvino.tgz https://example.com/p.tgz",
		},
		{
			name:     "empty value",
			template: "run {empty}done",
			want:     "run done",
		},
		{
			name:     "escaped braces",
			template: "echo ${{HOME}} and {pkg}",
			want:     "echo ${HOME} and openvino",
		},
		{
			name:     "missing parameter",
			template: "install {missing}",
			wantErr:  ErrUnresolvedParameter,
		},
		{
			name:     "unterminated placeholder",
			template: "install {pkg",
			wantErr:  ErrMalformedTemplate,
		},
		{
			name:     "empty placeholder",
			template: "install {}",
			wantErr:  ErrMalformedTemplate,
		},
		{
			name:     "bad placeholder name",
			template: "install {a b}",
			wantErr:  ErrMalformedTemplate,
		},
		{
			name:     "stray closing brace",
			template: "install }oops",
			wantErr:  ErrMalformedTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(tt.template, params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandNamesMissingParameter(t *testing.T) {
	_, err := expand("install {pkg}", map[string]string{})
	if !errors.Is(err, ErrUnresolvedParameter) {
		t.Fatalf("error = %v, want ErrUnresolvedParameter", err)
	}
	if got := err.Error(); !strings.Contains(got, `"pkg"`) {
		t.Fatalf("error %q does not name the missing parameter", got)
	}
}

func TestValidName(t *testing.T) {
	valid := []string{"a", "pkg", "package_url", "A1", "_x", "build.id"}
	for _, name := range valid {
		if !validName(name) {
			t.Errorf("validName(%q) = false, want true", name)
		}
	}

	invalid := []string{"", "1x", ".x", "a b", "a-b", "{", "pkg}"}
	for _, name := range invalid {
		if validName(name) {
			t.Errorf("validName(%q) = true, want false", name)
		}
	}
}
