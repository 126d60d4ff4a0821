package ezkv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileLoader implements the "file" scheme, and the schemeless case
// (§3: "Absence of scheme means file").
type fileLoader struct{}

func (fileLoader) Applicable(scheme string) bool { return scheme == "" || scheme == "file" }

func (fileLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	p := filePath(r)

	if !filepath.IsAbs(p) {
		if cwd, ok := ctx.Env.CWD(); ok {
			p = filepath.Join(cwd, p)
		}
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, p)
		}

		return nil, nil, fmt.Errorf("%w: %w", ErrMediaError, err)
	}
	defer f.Close()

	parser, _, err := resolveMedia(ctx.Media, r)
	if err != nil {
		return nil, nil, err
	}

	kvs, err := parseWith(parser, f, Meta{Source: Source{URI: r.URI}})
	if err != nil {
		return nil, nil, err
	}

	return kvs, nil, nil
}

// filePath extracts the filesystem path portion of a file:// or
// schemeless resource URI.
func filePath(r *Resource) string {
	opaque := r.URI
	if r.scheme() != "" {
		opaque = r.opaque()
	}

	if i := strings.IndexByte(opaque, '?'); i >= 0 {
		opaque = opaque[:i]
	}

	return strings.TrimPrefix(opaque, "//")
}
