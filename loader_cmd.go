package ezkv

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// cmdLoader implements the "cmd" scheme: the process's command-line
// arguments, parsed as "key=value" tokens (non key=value tokens are
// skipped), or one value selected by name in key-in-URI mode.
type cmdLoader struct{}

func (cmdLoader) Applicable(scheme string) bool { return scheme == "cmd" }

func (cmdLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	args := ctx.Env.Args()

	if line, ok := r.Parameters.Get("cmdline"); ok {
		tokens, err := shlex.Split(line)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: tokenizing cmdline parameter: %w", ErrResourceKeyInvalid, err)
		}

		args = tokens
	}

	vars := map[string]string{}

	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			continue
		}

		vars[k] = v
	}

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
