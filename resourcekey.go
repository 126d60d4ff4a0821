package ezkv

import (
	"fmt"
	"net/url"
	"strings"
)

// metaPrefix is the reserved prefix (and internal separator) for every
// resource-key DSL name recognized by C7.
const metaPrefix = "_"

// IsResourceKey reports whether key is one of the DSL meta-keys recognized
// in a resource body ("_load_<name>", "_flags_<name>", ...). Filters
// consult this (via the NoFilterResourceKeys flag) to decide whether to
// leave DSL keys untouched; the scheduler always strips them before
// routing entries to the accumulator.
func IsResourceKey(key string) bool {
	_, _, _, ok := parseBodyMetaKey(key)

	return ok
}

// parseBodyMetaKey splits a body meta-key of the form
// "_<kind>_<name>[_<rest>]" into its parts. kind is one of load,
// mediaType, mime, flags, flag, param, p, filter. name must be non-empty
// and, per §3, match [a-zA-Z0-9]+ (enforced by callers that create
// resources, not here). rest is required for param/p/filter and absent
// for the others.
func parseBodyMetaKey(key string) (kind, name, rest string, ok bool) {
	s, ok := strings.CutPrefix(key, metaPrefix)
	if !ok {
		return "", "", "", false
	}

	kind, s, ok = strings.Cut(s, "_")
	if !ok {
		return "", "", "", false
	}

	switch kind {
	case "load", "mediaType", "mime", "flags", "flag":
		if s == "" {
			return "", "", "", false
		}

		return kind, s, "", true
	case "param", "p", "filter":
		name, rest, ok = strings.Cut(s, "_")
		if !ok || name == "" || rest == "" {
			return "", "", "", false
		}

		return kind, name, rest, true
	default:
		return "", "", "", false
	}
}

// parseQueryMetaKey splits a URI-query meta-key of the form
// "_<kind>[_<rest>]" (no <name> segment: these describe the resource
// whose own URI carries the query, not a child). mediaType/mime/flags/flag
// take no rest; param/p/filter require one.
func parseQueryMetaKey(key string) (kind, rest string, ok bool) {
	s, ok := strings.CutPrefix(key, metaPrefix)
	if !ok {
		return "", "", false
	}

	kind, rest, hasRest := strings.Cut(s, "_")
	if !hasRest {
		kind = s
		rest = ""
	}

	switch kind {
	case "mediaType", "mime", "flags", "flag":
		if hasRest {
			return "", "", false
		}

		return kind, "", true
	case "param", "p", "filter":
		if !hasRest || rest == "" {
			return "", "", false
		}

		return kind, rest, true
	default:
		return "", "", false
	}
}

// queryPair is one raw "&"-delimited, percent-decoded key/value from a
// URI query string, kept in document order (unlike [url.Values], which
// discards it).
type queryPair struct {
	key, value string
}

func parseRawQuery(query string) ([]queryPair, error) {
	if query == "" {
		return nil, nil
	}

	var pairs []queryPair

	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}

		k, v, _ := strings.Cut(part, "=")

		dk, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: query key %q: %w", ErrResourceKeyInvalid, k, err)
		}

		dv, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: query value %q: %w", ErrResourceKeyInvalid, v, err)
		}

		pairs = append(pairs, queryPair{key: dk, value: dv})
	}

	return pairs, nil
}

// NormalizeResource merges r's URI-query-encoded DSL parameters into its
// already-set fields (C7 normalization): flags union, parameters and
// media-type override same-named existing fields, filters append after
// any programmatically-set ones. r.URI is rewritten with the consumed
// query keys removed; r.Normalized is set true. Calling it twice is a
// no-op.
func NormalizeResource(r *Resource) error {
	if r.Normalized {
		return nil
	}

	scheme := r.URI
	query := ""

	if i := strings.IndexByte(r.URI, '?'); i >= 0 {
		scheme = r.URI[:i]
		query = r.URI[i+1:]
	}

	pairs, err := parseRawQuery(query)
	if err != nil {
		return err
	}

	var kept []string

	if r.Parameters == nil {
		r.Parameters = &Parameters{}
	}

	for _, p := range pairs {
		kind, rest, ok := parseQueryMetaKey(p.key)
		if !ok {
			kept = append(kept, p.key+"="+url.QueryEscape(p.value))

			continue
		}

		switch kind {
		case "mediaType", "mime":
			r.MediaType = p.value
		case "flags", "flag":
			bits, ferr := ParseLoadFlags(p.value)
			if ferr != nil {
				return ferr
			}

			r.Flags |= bits
		case "param", "p":
			r.Parameters.Set(rest, p.value)
		case "filter":
			r.Filters = append(r.Filters, FilterSpec{ID: rest, Expression: p.value})
		}
	}

	if len(kept) > 0 {
		scheme += "?" + strings.Join(kept, "&")
	}

	r.URI = scheme
	r.Normalized = true

	return nil
}

// isValidResourceName reports whether name matches the required
// "[a-zA-Z0-9]+" grammar for a resource's symbolic name.
func isValidResourceName(name string) bool {
	if name == "" {
		return false
	}

	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}

	return true
}

// childBuild accumulates the pieces of one synthesized child [Resource]
// while its body meta-keys are scanned in declaration order.
type childBuild struct {
	resource *Resource
	seen     bool
}

// ExtractChildren scans kvs for "_load_<name>" anchors and their sibling
// meta-keys, returning one [Resource] per distinct name in first-seen
// order. It does not mutate or strip kvs; the caller strips DSL keys
// separately via [StripResourceKeys] after filtering. parent and its URI
// become the Parent/Reference context for every synthesized child.
func ExtractChildren(kvs []KeyValue, parent *Resource) ([]*Resource, error) {
	order := make([]string, 0, 4)
	builds := map[string]*childBuild{}

	get := func(name string) *childBuild {
		b, ok := builds[name]
		if !ok {
			b = &childBuild{resource: NewResource("").WithName(name)}
			b.resource.Parent = parent
			builds[name] = b
			order = append(order, name)
		}

		return b
	}

	for i := range kvs {
		kv := kvs[i]

		kind, name, rest, ok := parseBodyMetaKey(kv.Key)
		if !ok {
			continue
		}

		if !isValidResourceName(name) {
			return nil, newLoadError(parent, kv.Key, fmt.Errorf("%w: resource name %q must match [a-zA-Z0-9]+", ErrResourceKeyInvalid, name))
		}

		b := get(name)

		switch kind {
		case "load":
			if b.seen {
				return nil, newLoadError(parent, kv.Key, fmt.Errorf("%w: %q", ErrResourceNameDuplicate, name))
			}

			b.seen = true
			b.resource.URI = kv.Expanded()
			ref := kv
			b.resource.DeclaringKV = &ref
		case "mediaType", "mime":
			b.resource.MediaType = kv.Expanded()
		case "flags", "flag":
			bits, err := ParseLoadFlags(kv.Expanded())
			if err != nil {
				return nil, newLoadError(parent, kv.Key, err)
			}

			b.resource.Flags |= bits
		case "param", "p":
			b.resource.Parameters.Set(rest, kv.Expanded())
		case "filter":
			b.resource.Filters = append(b.resource.Filters, FilterSpec{ID: rest, Expression: kv.Expanded(), Label: name})
		}
	}

	children := make([]*Resource, 0, len(order))

	for _, name := range order {
		b := builds[name]
		if !b.seen {
			return nil, newLoadError(parent, "", fmt.Errorf("%w: meta-keys for %q with no \"_load_%s\" anchor", ErrResourceKeyInvalid, name, name))
		}

		children = append(children, b.resource)
	}

	return children, nil
}

// StripResourceKeys removes every DSL meta-key from kvs, preserving order.
func StripResourceKeys(kvs []KeyValue) []KeyValue {
	out := make([]KeyValue, 0, len(kvs))

	for _, kv := range kvs {
		if IsResourceKey(kv.Key) {
			continue
		}

		out = append(out, kv)
	}

	return out
}
