package ezkv

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jstachio/ezkv/media"
)

// LoaderContext bundles the host collaborators and registries a [Loader]
// needs to turn a normalized [Resource] into a [KeyValues] stream.
type LoaderContext struct {
	// Context carries cancellation and deadlines into a [Loader]'s own
	// I/O (network fetches, classpath/file reads), set from the
	// context.Context passed to [System.Load] or [Scheduler.Load].
	Context   context.Context
	Env       Environment
	Media     *media.Registry
	Providers []Provider
	// Mem backs the "mem" scheme: a registry of literal URI to document
	// content, used by [System.WithMemResource] and by this package's
	// own tests as a resource source that needs no real I/O.
	Mem map[string]string
}

// Loader produces a [KeyValues] stream for one resource scheme (§4.7). A
// loader may also synthesize additional child resources directly (the
// "classpaths", "profile.*", and "provider" fan-out meta-loaders) rather
// than through body "_load_*" keys; these are returned separately since
// the scheduler pushes them without running C7 extraction on them.
type Loader interface {
	Applicable(scheme string) bool
	Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error)
}

type loaderEntry struct {
	order  int
	loader Loader
}

// LoaderRegistry composes an order-sorted list of [Loader] implementations
// and dispatches by URI scheme, first match wins.
type LoaderRegistry struct {
	entries []loaderEntry
}

// NewLoaderRegistry returns an empty registry. Use
// [NewDefaultLoaderRegistry] for the built-in scheme set.
func NewLoaderRegistry() *LoaderRegistry {
	return &LoaderRegistry{}
}

// Register adds l to the registry. Lower order values are tried first.
func (r *LoaderRegistry) Register(order int, l Loader) {
	r.entries = append(r.entries, loaderEntry{order: order, loader: l})
}

// Find returns the lowest-order [Loader] applicable to scheme, or nil.
func (r *LoaderRegistry) Find(scheme string) Loader {
	best := -1

	for i, e := range r.entries {
		if !e.loader.Applicable(scheme) {
			continue
		}

		if best == -1 || e.order < r.entries[best].order {
			best = i
		}
	}

	if best == -1 {
		return nil
	}

	return r.entries[best].loader
}

// NewDefaultLoaderRegistry returns a LoaderRegistry pre-loaded with every
// built-in scheme handler at order -127: file, classpath, classpaths,
// system, env, cmd, stdin, provider, profile.*, mem, and a generic URL
// fallback.
func NewDefaultLoaderRegistry() *LoaderRegistry {
	reg := NewLoaderRegistry()
	reg.Register(-127, fileLoader{})
	reg.Register(-127, classpathLoader{})
	reg.Register(-127, classpathsLoader{})
	reg.Register(-127, systemLoader{})
	reg.Register(-127, envLoader{})
	reg.Register(-127, cmdLoader{})
	reg.Register(-127, stdinLoader{})
	reg.Register(-127, providerLoader{})
	reg.Register(-127, profileLoader{})
	reg.Register(-127, memLoader{})
	reg.Register(-127, urlLoader{})

	return reg
}

// resolveMedia picks the (parser, formatter) for r: an explicit
// r.MediaType wins, then extension sniffing on r.URI, then the built-in
// flat-properties format.
func resolveMedia(reg *media.Registry, r *Resource) (media.Parser, media.Formatter, error) {
	if r.MediaType != "" {
		p, f, ok := reg.ByName(r.MediaType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown media type %q", ErrMediaError, r.MediaType)
		}

		return p, f, nil
	}

	if p, f, ok := reg.ByURI(r.URI); ok {
		return p, f, nil
	}

	p, f, _ := reg.ByName("text/x-properties")

	return p, f, nil
}

// parseWith runs p over r, converting emitted [media.Pair]s into a
// memoized [KeyValues] stamped with meta whose Source.URI is r.URI.
func parseWith(p media.Parser, r io.Reader, meta Meta) (KeyValues, error) {
	var pairs []media.Pair

	err := p.Parse(r, func(pair media.Pair) error {
		pairs = append(pairs, pair)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaError, err)
	}

	return FromPairs(pairs, meta), nil
}

// mapToKeyValues lifts a map into a KeyValues stream, sorted by key for
// determinism (env/system enumeration has no natural declaration order).
func mapToKeyValues(m map[string]string, meta Meta) KeyValues {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]media.Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, media.Pair{Key: k, Value: m[k]})
	}

	return FromPairs(pairs, meta)
}

// splitSchemePath splits a resource's opaque part into an authority-like
// "///" prefix and the remaining path selector used by system/env/cmd/
// stdin's "key-in-URI" mode, e.g. "///HOME" -> "HOME", "///" -> "".
func splitSchemePath(opaque string) string {
	p := strings.TrimPrefix(opaque, "//")
	p = strings.TrimPrefix(p, "/")

	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	return p
}

// singleKeyStream re-parses a single map entry's value as nested content
// using m, for the "key-in-URI" mode shared by classpath/system/env/cmd.
func singleKeyStream(key string, m map[string]string, p media.Parser, meta Meta) (KeyValues, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q", ErrResourceNotFound, key)
	}

	return parseWith(p, strings.NewReader(v), meta)
}
