package ezkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jstachio/ezkv/media"
)

// RootSource is one starting point handed to [Scheduler.Load]: either a
// URI-addressed [Resource] dispatched through a [Loader], or a literal
// [KeyValues] sequence supplied directly by the embedding application
// (bypassing C9 dispatch and C7 extraction's "_load_" anchor entirely,
// though its own body is still mined for child resources).
type RootSource interface {
	rootNode() *schedNode
}

type resourceRoot struct {
	resource *Resource
}

func (r resourceRoot) rootNode() *schedNode { return &schedNode{resource: r.resource} }

// FromResource wraps r as a [RootSource].
func FromResource(r *Resource) RootSource { return resourceRoot{resource: r} }

// FromURI is a convenience for FromResource(NewResource(uri).WithFlags(flags)).
func FromURI(uri string, flags LoadFlag) RootSource {
	return resourceRoot{resource: NewResource(uri).WithFlags(flags)}
}

type inlineRoot struct {
	name  string
	kvs   KeyValues
	flags LoadFlag
}

func (r inlineRoot) rootNode() *schedNode {
	res := NewResource("inline:" + r.name).WithName(r.name).WithFlags(r.flags)
	res.Normalized = true

	return &schedNode{resource: res, inline: r.kvs}
}

// FromKeyValues wraps a literal sequence as a named [RootSource], for an
// embedding application that already has key/values in hand (e.g. parsed
// command-line flags) and wants them woven into the same interpolation
// and filter pipeline as everything else.
func FromKeyValues(name string, kvs KeyValues, flags LoadFlag) RootSource {
	return inlineRoot{name: name, kvs: kvs, flags: flags}
}

// schedNode is one pending unit of work on the scheduler's stack.
type schedNode struct {
	resource *Resource
	// inline is set for a node whose stream is already in hand (an
	// inlineRoot); when set, the loader dispatch in step 1 is skipped
	// entirely.
	inline KeyValues
}

// Scheduler is the recursion engine described in §4.8: a LIFO stack of
// pending resources, each loaded, locally interpolated, mined for further
// children, filtered, and routed, with the accumulator re-interpolated
// against the growing variables store after every resource.
type Scheduler struct {
	Loaders   *LoaderRegistry
	Filters   *FilterRegistry
	Env       Environment
	Media     *media.Registry
	Providers []Provider
	Mem       map[string]string
}

// Load drains roots to completion, in declared order (first root ends up
// on top of the stack and runs first, depth-first through any children it
// declares, before the next root starts), and returns the accumulated
// result with every entry's Expanded() set by a final, strict global
// re-interpolation pass. vars is consulted as the outermost link of every
// interpolation chain, beneath the scheduler's own variables store.
//
// goCtx governs cancellation of any network, classpath, or file I/O a
// [Loader] performs; it is threaded into every [LoaderContext] handed to
// loader.Load. A nil goCtx is treated as context.Background().
func (s *Scheduler) Load(goCtx context.Context, vars Variables, roots ...RootSource) (KeyValues, error) {
	logger := s.Env.Logger()
	if logger == nil {
		logger = NoopLogger{}
	}

	if vars == nil {
		vars = Empty()
	}

	if goCtx == nil {
		goCtx = context.Background()
	}

	ctx := &LoaderContext{Context: goCtx, Env: s.Env, Media: s.Media, Providers: s.Providers, Mem: s.Mem}

	stack := make([]*schedNode, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i].rootNode())
	}

	var accumulator []KeyValue

	keysIndex := map[string]bool{}
	varStore := map[string]string{}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		resource := node.resource

		tagged, synthesized, err := s.dispatch(ctx, logger, node)
		if err != nil {
			return nil, err
		}

		// step 3: local interpolation, scoped to this resource's own
		// batch plus the scheduler's store and the caller's vars.
		outerVars := Chain(FromMap(varStore), vars)

		localExpanded, err := Of(tagged...).expandDeferred(outerVars, false).Collect()
		if err != nil {
			return nil, newLoadError(resource, "", err)
		}

		// step 4: extract (or accept synthesized) children.
		children, err := s.extractChildren(resource, localExpanded, synthesized, logger)
		if err != nil {
			return nil, err
		}

		if resource.Flags.Has(Propagate) {
			for _, c := range children {
				c.Flags |= resource.Flags &^ (NoLoadChildren | Propagate)
			}
		}

		// step 5: filter chain.
		ignore := func(string) bool { return false }
		if resource.Flags.Has(NoFilterResourceKeys) {
			ignore = IsResourceKey
		}

		filtered, err := s.Filters.ApplyChain(resource.Filters, localExpanded, ignore)
		if err != nil {
			return nil, newLoadError(resource, "", err)
		}

		// step 6: strip DSL keys.
		stripped := StripResourceKeys(filtered)

		// step 7: route to the accumulator or the variables store.
		if err := route(resource, stripped, &accumulator, keysIndex, varStore); err != nil {
			return nil, newLoadError(resource, "", err)
		}

		// push children LIFO so the first declared runs next, depth-first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, &schedNode{resource: children[i]})
		}

		// step 8: re-interpolate the whole accumulator so far against the
		// updated store, deferring any reference a not-yet-loaded sibling
		// or later root might still resolve.
		globalVars := Chain(FromMap(varStore), vars)

		reExpanded, err := Of(accumulator...).expandDeferred(globalVars, true).Collect()
		if err != nil {
			return nil, err
		}

		accumulator = reExpanded

		snapshot, err := Of(accumulator...).ToMap()
		if err != nil {
			return nil, err
		}

		for k, v := range snapshot {
			varStore[k] = v
		}
	}

	finalVars := Chain(FromMap(varStore), vars)

	final, err := Of(accumulator...).ExpandGlobal(finalVars).Memoize()
	if err != nil {
		return nil, err
	}

	return final, nil
}

// dispatch runs step 1 (loader lookup and invocation, or the inline
// stream already in hand) and step 2 (tagging every produced entry with
// this resource's provenance and flag-derived [KVFlag]s).
func (s *Scheduler) dispatch(ctx *LoaderContext, logger Logger, node *schedNode) ([]KeyValue, []*Resource, error) {
	resource := node.resource

	var (
		rawSlice    []KeyValue
		synthesized []*Resource
	)

	if node.inline != nil {
		vs, err := node.inline.Collect()
		if err != nil {
			return nil, nil, newLoadError(resource, "", err)
		}

		rawSlice = vs
	} else {
		if err := NormalizeResource(resource); err != nil {
			return nil, nil, newLoadError(resource, "", err)
		}

		logger.Load(resource)

		loader := s.Loaders.Find(resource.scheme())
		if loader == nil {
			return nil, nil, newLoadError(resource, "", ErrLoaderNotFound)
		}

		stream, children, err := loader.Load(ctx, resource)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) && resource.Flags.Has(NoRequire) {
				logger.Missing(resource, err)

				stream = Of()
				children = nil
			} else {
				le := newLoadError(resource, "", err)
				logger.Fatal(le)

				return nil, nil, le
			}
		} else {
			logger.Loaded(resource)
		}

		vs, err := stream.Collect()
		if err != nil {
			le := newLoadError(resource, "", err)
			logger.Fatal(le)

			return nil, nil, le
		}

		rawSlice = vs
		synthesized = children
	}

	ref := resource.Reference()

	tagged := make([]KeyValue, 0, len(rawSlice))

	for _, kv := range rawSlice {
		kv.Meta.Source.URI = resource.URI
		kv.Meta.Source.Reference = ref

		if resource.Flags.Has(NoInterpolate) {
			kv.Meta.Flags |= NoInterpolation
		}

		if resource.Flags.Has(SensitiveFlag) {
			kv.Meta.Flags |= Sensitive
		}

		tagged = append(tagged, kv)
	}

	return tagged, synthesized, nil
}

// extractChildren runs C7 extraction unless the loader already synthesized
// its own children (classpaths/profile.*/provider fan-out, which have no
// "_load_" anchors to scan for) or the resource forbids children outright.
func (s *Scheduler) extractChildren(resource *Resource, localExpanded []KeyValue, synthesized []*Resource, logger Logger) ([]*Resource, error) {
	if synthesized != nil {
		return synthesized, nil
	}

	if resource.Flags.Has(NoLoadChildren) {
		if hasLoadKey(localExpanded) {
			logger.Warn(fmt.Sprintf("%v: resource %q", ErrChildrenForbidden, resource.URI))
		}

		return nil, nil
	}

	return ExtractChildren(localExpanded, resource)
}

// hasLoadKey reports whether kvs contains any "_load_<name>" meta-key.
func hasLoadKey(kvs []KeyValue) bool {
	for _, kv := range kvs {
		if kind, _, _, ok := parseBodyMetaKey(kv.Key); ok && kind == "load" {
			return true
		}
	}

	return false
}

// route implements step 7: a [NoAdd] resource's entries land only in the
// variables store; otherwise each entry is appended to the accumulator,
// skipped under [NoReplace] if its key is already present, and the whole
// batch must add at least one entry if the resource carries [NoEmpty].
func route(resource *Resource, stripped []KeyValue, accumulator *[]KeyValue, keysIndex map[string]bool, varStore map[string]string) error {
	if resource.Flags.Has(NoAdd) {
		for _, kv := range stripped {
			varStore[kv.Key] = kv.Expanded()
		}

		return nil
	}

	added := 0

	for _, kv := range stripped {
		if resource.Flags.Has(NoReplace) && keysIndex[kv.Key] {
			continue
		}

		*accumulator = append(*accumulator, kv)
		keysIndex[kv.Key] = true
		added++
	}

	if resource.Flags.Has(NoEmpty) && added == 0 {
		return ErrEmpty
	}

	return nil
}
