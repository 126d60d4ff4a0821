package ezkv

import (
	"bytes"
	"fmt"
	"io"
	"slices"
)

// stdinLoader implements the "stdin" scheme. It only reads standard
// input when explicitly enabled (§4.7): parameter "stdin=true", a
// "stdin_arg=--xxx" parameter whose flag is present in the program args,
// or the default "--<resourceName>" flag present in the program args.
// Otherwise it reports the resource missing so [NoRequire] can suppress
// it silently, which is the expected usage pattern.
type stdinLoader struct{}

func (stdinLoader) Applicable(scheme string) bool { return scheme == "stdin" }

func (stdinLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	if !stdinEnabled(ctx, r) {
		return nil, nil, fmt.Errorf("%w: stdin not enabled for resource %q", ErrResourceNotFound, r.Name)
	}

	data, err := io.ReadAll(ctx.Env.Stdin())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading stdin: %w", ErrMediaError, err)
	}

	meta := Meta{Source: Source{URI: r.URI}}

	if key := splitSchemePath(r.opaque()); key != "" {
		return Of(NewKeyValue(key, string(data), meta)), nil, nil
	}

	parser, _, err := resolveMedia(ctx.Media, r)
	if err != nil {
		return nil, nil, err
	}

	kvs, err := parseWith(parser, bytes.NewReader(data), meta)

	return kvs, nil, err
}

func stdinEnabled(ctx *LoaderContext, r *Resource) bool {
	if v, ok := r.Parameters.Get("stdin"); ok && v == "true" {
		return true
	}

	args := ctx.Env.Args()

	if arg, ok := r.Parameters.Get("stdin_arg"); ok && slices.Contains(args, arg) {
		return true
	}

	return r.Name != "" && slices.Contains(args, "--"+r.Name)
}
