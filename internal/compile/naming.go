package compile

import (
	"strings"
	"unicode"
)

// Kebab lowercases a snake_case or CamelCase identifier into
// hyphen-separated tokens. The boundary rules are deliberately an
// explicit rune scan, not a regexp, so the output is pinned down
// independent of any engine's matching semantics:
//
//   - underscores and hyphens separate tokens
//   - a lowercase letter or digit followed by an uppercase letter is
//     a boundary
//   - an uppercase run followed by uppercase-then-lowercase splits
//     before the last uppercase ("HTTPServer" -> "http-server")
func Kebab(s string) string {
	runes := []rune(s)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				flush()
			case i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// start of a new word inside or after an
				// uppercase run
				flush()
			}
		}
		current = append(current, unicode.ToLower(r))
	}
	flush()

	return strings.Join(words, "-")
}

// SplitOperationID derives the (resource, operation) name pair from
// an operation identifier and its tag list. Identifiers use "/" as a
// grouping separator; single-segment identifiers take their resource
// from the first tag, falling back to "misc".
func SplitOperationID(opID string, tags []string) (resource, operation string) {
	parts := strings.Split(opID, "/")
	switch len(parts) {
	case 1:
		resource = "misc"
		if len(tags) > 0 {
			resource = tags[0]
		}
		operation = parts[0]
	case 2:
		resource, operation = parts[0], parts[1]
	default:
		resource = parts[0]
		operation = strings.Join(parts[1:], "-")
	}
	return Kebab(resource), Kebab(operation)
}

// flagName derives the CLI flag form of a parameter name. Only
// underscores are substituted; no case-boundary splitting is applied,
// unlike resource and operation names. Regenerated CLIs must keep
// flag names stable, so this asymmetry is preserved on purpose.
func flagName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
