package ezkv

import (
	"fmt"
	"strings"
)

// memLoader implements the "mem" scheme: a resource whose content was
// registered in-process via [System.WithMemResource], keyed by its
// literal URI. It exists for tests and small embedded defaults that
// should not require real file or network I/O.
type memLoader struct{}

func (memLoader) Applicable(scheme string) bool { return scheme == "mem" }

func (memLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	content, ok := ctx.Mem[r.URI]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, r.URI)
	}

	parser, _, err := resolveMedia(ctx.Media, r)
	if err != nil {
		return nil, nil, err
	}

	kvs, err := parseWith(parser, strings.NewReader(content), Meta{Source: Source{URI: r.URI}})
	if err != nil {
		return nil, nil, err
	}

	return kvs, nil, nil
}
