package render

import (
	"fmt"
	"strings"
)

// Replaces every {name} placeholder in the template with the corresponding
// parameter value.
//
// Literal braces are written doubled: "{{" produces "{" and "}}" produces
// "}". A "{" that does not open a placeholder or a stray "}" is a syntax
// error. A placeholder naming a parameter absent from the set fails with
// [ErrUnresolvedParameter].
func expand(template string, params map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(template))

	for i := 0; i < len(template); {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				out.WriteByte('{')
				i += 2
				continue
			}

			name, rest, err := scanPlaceholder(template, i)
			if err != nil {
				return "", err
			}

			value, ok := params[name]
			if !ok {
				return "", fmt.Errorf("%w: %q in %q", ErrUnresolvedParameter, name, template)
			}

			out.WriteString(value)
			i = rest

		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				out.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("%w: stray %q at offset %d in %q", ErrMalformedTemplate, "}", i, template)

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String(), nil
}

// Scans a placeholder starting at the "{" at offset start.
//
// Returns the placeholder name and the offset just past the closing "}".
func scanPlaceholder(template string, start int) (string, int, error) {
	end := strings.IndexByte(template[start:], '}')
	if end < 0 {
		return "", 0, fmt.Errorf("%w: unterminated placeholder at offset %d in %q", ErrMalformedTemplate, start, template)
	}
	end += start

	name := template[start+1 : end]
	if !validName(name) {
		return "", 0, fmt.Errorf("%w: bad placeholder name %q in %q", ErrMalformedTemplate, name, template)
	}

	return name, end + 1, nil
}

// Reports whether s is a valid placeholder name: a letter or underscore
// followed by letters, digits, underscores, or dots.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '.'):
		default:
			return false
		}
	}
	return true
}
