package ezkv

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// classpathLoader implements the "classpath" scheme: a single entry
// opened through the [ClasspathLoader] collaborator (an ordered search
// path of [fs.FS] roots, the Go analogue of a JVM classpath).
//
// A path containing "!" addresses an entry inside the opened document
// rather than the document itself, mirroring the JVM's own
// "jar:file!entry"-style archive addressing: the part before "!" is the
// classpath entry to open and parse, and the part after it is a single
// key in that parsed document whose value is itself an embedded
// key-value document, re-parsed with the resource's media (key-in-URI
// mode, §4.7).
type classpathLoader struct{}

func (classpathLoader) Applicable(scheme string) bool { return scheme == "classpath" }

func (classpathLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	path := splitSchemePath(r.opaque())
	filePath, key, hasKey := strings.Cut(path, "!")

	f, err := ctx.Env.Classpath().Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: classpath:%s", ErrResourceNotFound, filePath)
		}

		return nil, nil, fmt.Errorf("%w: %w", ErrMediaError, err)
	}
	defer f.Close()

	parser, _, err := resolveMedia(ctx.Media, r)
	if err != nil {
		return nil, nil, err
	}

	meta := Meta{Source: Source{URI: r.URI}}

	outer, err := parseWith(parser, f, meta)
	if err != nil {
		return nil, nil, err
	}

	if !hasKey {
		return outer, nil, nil
	}

	m, err := outer.ToMap()
	if err != nil {
		return nil, nil, err
	}

	kvs, err := singleKeyStream(key, m, parser, meta)

	return kvs, nil, err
}

// classpathsLoader implements the plural "classpaths" meta-loader: it
// enumerates every classpath entry matching the resource's path as a
// glob, deduplicates by resolved path, and synthesizes one child
// resource per match with [NoLoadChildren] forced on (§4.7).
type classpathsLoader struct{}

func (classpathsLoader) Applicable(scheme string) bool { return scheme == "classpaths" }

func (classpathsLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	pattern := splitSchemePath(r.opaque())

	matches, err := ctx.Env.Classpath().Enumerate(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMediaError, err)
	}

	children := make([]*Resource, 0, len(matches))

	for _, m := range matches {
		child := r.clone()
		child.URI = "classpath:///" + m
		child.Name = ""
		child.Flags |= NoLoadChildren
		child.MediaType = ""
		child.Normalized = true
		children = append(children, child)
	}

	return Of(), children, nil
}
