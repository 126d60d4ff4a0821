package ezkv

import (
	"errors"
	"fmt"
	"strings"
)

// MaxInterpolationDepth is the default recursion limit for "${...}"
// expansion. Exceeding it fails with [ErrInterpolationLimit].
const MaxInterpolationDepth = 20

// Expand performs bash-style "${...}" expansion of value against vars.
// "$$" is a literal '$'. "${name}" substitutes vars(name), failing with
// [ErrMissingVariable] if vars does not know name. "${name:-default}"
// substitutes vars(name) if bound, else the (recursively expanded)
// default. Names and defaults may themselves contain "${...}". Depth
// beyond [MaxInterpolationDepth] fails with [ErrInterpolationLimit].
func Expand(value string, vars Variables) (string, error) {
	out, _, err := expand(value, vars, 0, false)

	return out, err
}

// expandDeferred is like [Expand] except a reference that resolves to no
// variable and carries no default is left verbatim ("${name}") rather than
// failing. The scheduler (§4.8) uses this for its local and intermediate
// global passes, where a value may reference a variable contributed by a
// resource that has not loaded yet; the final pass after the stack drains
// uses strict [Expand] semantics so a truly missing variable still fails.
func expandDeferred(value string, vars Variables) (string, error) {
	out, _, err := expand(value, vars, 0, true)

	return out, err
}

func expand(value string, vars Variables, depth int, lenient bool) (string, int, error) {
	if depth > MaxInterpolationDepth {
		return "", 0, ErrInterpolationLimit
	}

	var sb strings.Builder

	i := 0
	for i < len(value) {
		if value[i] != '$' {
			sb.WriteByte(value[i])
			i++

			continue
		}

		if i+1 < len(value) && value[i+1] == '$' {
			sb.WriteByte('$')
			i += 2

			continue
		}

		if i+1 >= len(value) || value[i+1] != '{' {
			sb.WriteByte(value[i])
			i++

			continue
		}

		end, err := findClose(value, i+2)
		if err != nil {
			return "", 0, err
		}

		inner := value[i+2 : end]

		resolved, err := resolveRef(inner, vars, depth+1, lenient)
		if err != nil {
			if lenient && errors.Is(err, ErrMissingVariable) {
				sb.WriteString(value[i : end+1])
				i = end + 1

				continue
			}

			return "", 0, err
		}

		sb.WriteString(resolved)
		i = end + 1
	}

	return sb.String(), i, nil
}

// findClose finds the index of the '}' matching the "${" whose body starts
// at start, honoring nested "${...}" runs within it.
func findClose(value string, start int) (int, error) {
	depth := 1
	i := start

	for i < len(value) {
		switch {
		case strings.HasPrefix(value[i:], "${"):
			depth++
			i += 2
		case value[i] == '}':
			depth--

			if depth == 0 {
				return i, nil
			}

			i++
		default:
			i++
		}
	}

	return 0, fmt.Errorf("%w: unterminated \"${\"", ErrResourceKeyInvalid)
}

// resolveRef expands the body of one "${...}" reference: "name" or
// "name:-default".
func resolveRef(ref string, vars Variables, depth int, lenient bool) (string, error) {
	name, def, hasDefault := splitDefault(ref)

	expandedName, _, err := expand(name, vars, depth, lenient)
	if err != nil {
		return "", err
	}

	if v, ok := vars(expandedName); ok {
		return v, nil
	}

	if !hasDefault {
		return "", fmt.Errorf("%w: %q", ErrMissingVariable, expandedName)
	}

	expandedDefault, _, err := expand(def, vars, depth, lenient)
	if err != nil {
		return "", err
	}

	return expandedDefault, nil
}

// splitDefault splits "name:-default" into ("name", "default", true), or
// returns (ref, "", false) when there is no top-level ":-" separator
// (nested "${...}" runs are skipped while searching).
func splitDefault(ref string) (string, string, bool) {
	depth := 0

	for i := 0; i < len(ref); i++ {
		switch {
		case strings.HasPrefix(ref[i:], "${"):
			depth++
			i++
		case ref[i] == '}' && depth > 0:
			depth--
		case depth == 0 && strings.HasPrefix(ref[i:], ":-"):
			return ref[:i], ref[i+2:], true
		}
	}

	return ref, "", false
}
