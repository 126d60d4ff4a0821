package ezkv

import (
	"bytes"
	"fmt"

	"github.com/cavaliergopher/grab/v3"
)

// urlLoader is the generic URL fallback (§4.7): network schemes fetch
// through [grab.Client] with no on-disk write, and any other scheme
// falls through to the [fileLoader] path resolution (treating its
// opaque part as a filesystem path), matching how "jar:"/"jrt:"-style
// archive-relative URIs resolve in the absence of a JVM classloader.
// It is registered last and applies to every scheme, so a more specific
// loader registered ahead of it always wins.
type urlLoader struct{}

func (urlLoader) Applicable(scheme string) bool { return true }

func (urlLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	scheme := r.scheme()

	if scheme != "http" && scheme != "https" {
		return fileLoader{}.Load(ctx, r)
	}

	req, err := grab.NewRequest("", r.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrResourceNotFound, err)
	}

	req = req.WithContext(ctx.Context)
	req.NoStore = true

	resp := grab.NewClient().Do(req)
	if err := resp.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrResourceNotFound, r.URI, err)
	}

	parser, _, err := resolveMedia(ctx.Media, r)
	if err != nil {
		return nil, nil, err
	}

	body, err := resp.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrResourceNotFound, r.URI, err)
	}

	kvs, err := parseWith(parser, bytes.NewReader(body), Meta{Source: Source{URI: r.URI}})
	if err != nil {
		return nil, nil, err
	}

	return kvs, nil, nil
}
