package ezkv

import "strings"

// FilterSpec is one entry in a [Resource]'s filter chain: a registered
// filter id (e.g. "grep", "sed", "join"), its free-form expression, and
// the label it was declared under (the meta-key name or "" for a
// programmatically appended filter).
type FilterSpec struct {
	ID         string
	Expression string
	Label      string
}

// Parameters is an ordered map of short parameter name to value, as
// carried by "_param_<name>_<k>" meta-keys and URI query parameters.
// Iteration order (via [Parameters.Keys]) is insertion order; setting an
// existing key again updates its value in place without moving it.
type Parameters struct {
	keys   []string
	values map[string]string
}

// Get returns the value bound to k, if any.
func (p *Parameters) Get(k string) (string, bool) {
	if p == nil || p.values == nil {
		return "", false
	}

	v, ok := p.values[k]

	return v, ok
}

// Set binds k to v, overriding any existing binding without disturbing
// insertion order.
func (p *Parameters) Set(k, v string) {
	if p.values == nil {
		p.values = map[string]string{}
	}

	if _, ok := p.values[k]; !ok {
		p.keys = append(p.keys, k)
	}

	p.values[k] = v
}

// Keys returns the bound parameter names in insertion order.
func (p *Parameters) Keys() []string {
	if p == nil {
		return nil
	}

	return p.keys
}

// Clone returns a deep copy of p.
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return &Parameters{}
	}

	out := &Parameters{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]string, len(p.values)),
	}
	for k, v := range p.values {
		out.values[k] = v
	}

	return out
}

// Resource is a normalized declaration of a URI-addressable source of
// key/values: the scheme of [Resource.URI] selects the [Loader] that
// produces its stream. Construct one with [NewResource]; the scheduler
// marks it [Resource.Normalized] once C7 normalization has merged
// URI-query parameters into it.
type Resource struct {
	URI        string
	Name       string
	Flags      LoadFlag
	MediaType  string
	Parameters *Parameters
	Filters    []FilterSpec

	// DeclaringKV is the "_load_<name>" entry that caused this resource
	// to be pushed, or nil for a root resource.
	DeclaringKV *KeyValue
	// Parent is the resource whose stream contained DeclaringKV, or nil
	// for a root resource.
	Parent *Resource

	Normalized bool
}

// NewResource returns a Resource for uri with no flags, parameters, or
// filters set.
func NewResource(uri string) *Resource {
	return &Resource{URI: uri, Parameters: &Parameters{}}
}

// WithName returns r with Name set to name.
func (r *Resource) WithName(name string) *Resource {
	r.Name = name

	return r
}

// WithFlags returns r with Flags set to flags (replacing, not adding).
func (r *Resource) WithFlags(flags LoadFlag) *Resource {
	r.Flags = flags

	return r
}

// Reference renders the (key, uri) pair that declared r, for use in
// [Source.Reference] and [LoadError].
func (r *Resource) Reference() *Reference {
	if r.DeclaringKV == nil || r.Parent == nil {
		return nil
	}

	return &Reference{Key: r.DeclaringKV.Key, URI: r.Parent.URI}
}

// scheme returns the URI's scheme, lowercased, or "" if absent (in which
// case the resource is treated as a "file" scheme per §3).
func (r *Resource) scheme() string {
	uri := r.URI

	i := strings.Index(uri, ":")
	if i < 0 {
		return ""
	}
	// Guard against a bare Windows-style path ("C:\...") or a URI whose
	// first colon appears after a '/' (no scheme present).
	if slash := strings.IndexAny(uri, "/\\"); slash >= 0 && slash < i {
		return ""
	}

	for _, c := range uri[:i] {
		if !(c == '+' || c == '-' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return ""
		}
	}

	return strings.ToLower(uri[:i])
}

// opaque returns the part of the URI after "scheme:", unparsed (may
// still contain "//" authority and "?query").
func (r *Resource) opaque() string {
	i := strings.Index(r.URI, ":")
	if i < 0 {
		return r.URI
	}

	return r.URI[i+1:]
}

// clone returns a shallow-ish copy of r suitable for a synthesized child
// that inherits r's parameters and flags (provider/classpaths fan-out).
func (r *Resource) clone() *Resource {
	c := *r
	c.Parameters = r.Parameters.Clone()
	c.Filters = append([]FilterSpec(nil), r.Filters...)
	c.Normalized = false

	return &c
}
