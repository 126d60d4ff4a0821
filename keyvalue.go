package ezkv

// Reference names the key (within its declaring resource's URI) whose
// "_load_<name>" value caused a child resource to be loaded. Root
// resources have no Reference.
type Reference struct {
	Key string
	URI string
}

// Source records where a [KeyValue] came from: the URI of the resource
// that produced it, the reference that declared that resource (nil for a
// root resource), and this entry's 1-based position within the resource.
type Source struct {
	URI       string
	Reference *Reference
	Index     int
}

// Meta carries everything about a [KeyValue] beyond its key and value.
type Meta struct {
	OriginalKey string
	Source      Source
	Flags       KVFlag
}

// KeyValue is an immutable (key, raw value, expanded value, provenance)
// record. Construct one with [NewKeyValue]; the zero value is not useful
// since Key must be non-empty.
type KeyValue struct {
	Key      string
	raw      string
	expanded string
	Meta     Meta
}

// NewKeyValue builds a KeyValue whose expanded value starts out equal to
// raw (interpolation has not run yet).
func NewKeyValue(key, raw string, meta Meta) KeyValue {
	if meta.OriginalKey == "" {
		meta.OriginalKey = key
	}

	return KeyValue{Key: key, raw: raw, expanded: raw, Meta: meta}
}

// Value returns the original, pre-interpolation value.
func (kv KeyValue) Value() string { return kv.raw }

// Expanded returns the post-interpolation value. Before interpolation
// runs, it equals [KeyValue.Value].
func (kv KeyValue) Expanded() string { return kv.expanded }

// WithExpanded returns a copy of kv with its expanded value replaced.
// Flagged [NoInterpolation] entries should never be passed a value other
// than kv.Value(); callers enforce that invariant, not this method.
func (kv KeyValue) WithExpanded(expanded string) KeyValue {
	kv.expanded = expanded

	return kv
}

// WithValue returns a copy of kv with both its raw and expanded values
// replaced by v. Filters (§4.5) call this rather than [KeyValue.WithExpanded]
// because a filter rewrite is not interpolation: it must hold for
// [KeyValue.IsNoInterpolation] entries too, and raw/expanded must stay in
// lockstep afterward.
func (kv KeyValue) WithValue(v string) KeyValue {
	kv.raw = v
	kv.expanded = v

	return kv
}

// IsSensitive reports whether kv carries [Sensitive].
func (kv KeyValue) IsSensitive() bool { return kv.Meta.Flags.Has(Sensitive) }

// IsNoInterpolation reports whether kv carries [NoInterpolation].
func (kv KeyValue) IsNoInterpolation() bool { return kv.Meta.Flags.Has(NoInterpolation) }

// DisplayValue returns the literal string "REDACTED" for a [Sensitive]
// entry, and [KeyValue.Expanded] otherwise. Formatters should call this
// instead of Expanded when asked to redact.
func (kv KeyValue) DisplayValue() string {
	if kv.IsSensitive() {
		return "REDACTED"
	}

	return kv.expanded
}
