// Package yaml is an external media plug-in: it flattens YAML documents to
// dotted keys and registers itself with an ezkv [media.Registry] exactly
// the way JSON5, XML, or .env would. It depends only on
// github.com/jstachio/ezkv/media and github.com/goccy/go-yaml, never on the
// ezkv package itself, which is what keeps it a plug-in rather than a core
// dependency.
//
// Mapping keys flatten with '.' ("a.b.c"); sequence elements flatten with
// an index suffix ("a.b[0]", "a.b[1]"). Scalars stringify using YAML's own
// scalar formatting.
package yaml
