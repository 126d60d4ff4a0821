package ezkv

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Test and host code should match these with
// [errors.Is], never by comparing concrete types.
var (
	// ErrResourceNotFound indicates a missing file, classpath entry,
	// environment key, or host-fact key. Tolerated when the resource
	// carries [NoRequire].
	ErrResourceNotFound = errors.New("ezkv: resource not found")
	// ErrResourceNameDuplicate indicates two sibling resources share a name.
	ErrResourceNameDuplicate = errors.New("ezkv: duplicate resource name")
	// ErrResourceKeyInvalid indicates a malformed DSL key, an unknown flag
	// or filter id where one is required, or a reserved flag (LOCK).
	ErrResourceKeyInvalid = errors.New("ezkv: invalid resource key")
	// ErrBadFilterExpression indicates an unsupported sed verb, a malformed
	// regular expression, or an unknown filter target suffix.
	ErrBadFilterExpression = errors.New("ezkv: bad filter expression")
	// ErrMediaError indicates a parser I/O or syntax error.
	ErrMediaError = errors.New("ezkv: media error")
	// ErrMissingVariable indicates "${name}" with no default and no binding.
	ErrMissingVariable = errors.New("ezkv: missing variable")
	// ErrInterpolationLimit indicates interpolation recursed past
	// [MaxInterpolationDepth].
	ErrInterpolationLimit = errors.New("ezkv: interpolation limit exceeded")
	// ErrEmpty indicates a NoEmpty resource produced zero kept entries.
	ErrEmpty = errors.New("ezkv: resource produced no entries")
	// ErrChildrenForbidden indicates a NoLoadChildren resource declared
	// children anyway; this is logged as a warning, not raised as an error.
	ErrChildrenForbidden = errors.New("ezkv: children forbidden")
	// ErrLoaderNotFound indicates no registered [Loader] handles a scheme.
	ErrLoaderNotFound = errors.New("ezkv: no loader for scheme")
)

// LoadError wraps a fatal load failure with the resource chain that
// produced it: the failing resource and its declaring references up to
// the root, the originating URI, and (when applicable) the triggering
// key. Use [errors.Is] against the sentinel errors above to classify a
// LoadError's cause.
type LoadError struct {
	Cause    error
	URI      string
	Key      string
	Resource *Resource
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Cause.Error())

	if e.URI != "" {
		fmt.Fprintf(&sb, ": uri=%q", e.URI)
	}

	if e.Key != "" {
		fmt.Fprintf(&sb, ": key=%q", e.Key)
	}

	if chain := resourceChain(e.Resource); chain != "" {
		fmt.Fprintf(&sb, ": chain=%s", chain)
	}

	return sb.String()
}

// Unwrap exposes Cause to [errors.Is] and [errors.As].
func (e *LoadError) Unwrap() error { return e.Cause }

// newLoadError builds a [LoadError] for resource r, wrapping cause. key is
// the triggering key, if any; pass "" when not applicable.
func newLoadError(r *Resource, key string, cause error) *LoadError {
	le := &LoadError{Cause: cause, Key: key, Resource: r}
	if r != nil {
		le.URI = r.URI
	}

	return le
}

// resourceChain renders r and its declaring references up to the root as
// `uri (via key "k" in parent-uri) <- ...`.
func resourceChain(r *Resource) string {
	if r == nil {
		return ""
	}

	var parts []string

	for cur := r; cur != nil; cur = cur.Parent {
		part := cur.URI

		if ref := cur.Reference(); ref != nil {
			part = fmt.Sprintf("%s (via key %q in %s)", part, ref.Key, ref.URI)
		}

		parts = append(parts, part)
	}

	return strings.Join(parts, " <- ")
}
