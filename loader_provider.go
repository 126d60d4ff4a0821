package ezkv

import "fmt"

// Provider is a programmatic resource builder registered with a [System]
// (§4.7 "provider" scheme): an embedding application supplies key/values
// without addressing them through a URI-resolvable resource at all.
type Provider interface {
	// ProviderName identifies this provider for "provider:///<name>"
	// addressing; a fan-out from "provider:///" synthesizes one child with
	// that URI per provider (the child's resource name is left empty).
	ProviderName() string
	// Provide returns this provider's key/values.
	Provide() (KeyValues, error)
}

// ProviderFunc adapts a function to a [Provider].
type ProviderFunc struct {
	Name string
	Fn   func() (KeyValues, error)
}

func (p ProviderFunc) ProviderName() string          { return p.Name }
func (p ProviderFunc) Provide() (KeyValues, error) { return p.Fn() }

// providerLoader implements the "provider" scheme.
type providerLoader struct{}

func (providerLoader) Applicable(scheme string) bool { return scheme == "provider" }

func (providerLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	path := splitSchemePath(r.opaque())

	if path == "" {
		children := make([]*Resource, 0, len(ctx.Providers))

		for _, p := range ctx.Providers {
			child := r.clone()
			child.URI = "provider:///" + p.ProviderName()
			child.Name = ""
			child.Normalized = true
			children = append(children, child)
		}

		return Of(), children, nil
	}

	for _, p := range ctx.Providers {
		if p.ProviderName() != path {
			continue
		}

		kvs, err := p.Provide()

		return kvs, nil, err
	}

	return nil, nil, fmt.Errorf("%w: provider %q", ErrResourceNotFound, path)
}
