package ezkv

// envLoader implements the "env" scheme: enumerates process environment
// variables, or selects one by name in key-in-URI mode and re-parses its
// value with the resource's media.
type envLoader struct{}

func (envLoader) Applicable(scheme string) bool { return scheme == "env" }

func (envLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	vars := ctx.Env.EnvironmentVariables()
	meta := Meta{Source: Source{URI: r.URI}}

	if key := splitSchemePath(r.opaque()); key != "" {
		parser, _, err := resolveMedia(ctx.Media, r)
		if err != nil {
			return nil, nil, err
		}

		kvs, err := singleKeyStream(key, vars, parser, meta)

		return kvs, nil, err
	}

	return mapToKeyValues(vars, meta), nil, nil
}
