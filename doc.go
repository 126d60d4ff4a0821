// Package ezkv loads an ordered stream of string key/value pairs from
// layered resources -- files, classpath-style search roots, environment
// variables, host/process facts, command-line arguments, stdin, and
// programmatic providers -- where a loaded key/value may itself declare
// further resources to load, producing a recursive, depth-first
// expansion. The result is a flat, ordered list of (key, value,
// provenance) triples meant to seed a higher-level configuration layer;
// ezkv does not bind values to structs, watch for changes, or expose a
// getProperty API.
//
// # Pipeline
//
// [Scheduler.Load] (reached through [System.Load]) drives a six-phase, single-threaded recursion per resource:
//
//  1. Normalize: merge a resource's URI query parameters (media-type,
//     flags, named parameters, filters) with its programmatically-set
//     fields. URI-query values win on conflicting parameter names.
//  2. Dispatch: the resource's URI scheme selects a [Loader] (file,
//     classpath, env, system, cmd, stdin, provider, profile, classpaths,
//     or a generic URL fetch) that produces a [KeyValues] stream.
//  3. Local interpolate: each value's "${name}" references resolve
//     against the resource's own keys first, then the outer variables
//     chain, so sibling keys within one resource can reference each
//     other before the scheduler ever sees them.
//  4. Extract children: "_load_<name>" keys (plus their sibling
//     "_flags_"/"_mediaType_"/"_param_"/"_filter_" meta-keys) describe
//     further resources, pushed onto the scheduler's stack so they load
//     depth-first, in declaration order, before the next sibling.
//  5. Filter: the resource's grep/sed/join chain runs, and DSL meta-keys
//     are stripped.
//  6. Route: entries append to the accumulated result (subject to
//     NO_REPLACE/NO_EMPTY) or, under NO_ADD, only to the variables
//     store -- then the whole accumulator is re-interpolated so later
//     resources see earlier keys as variables.
//
// # Plug-ins
//
// [media.Registry] resolves a media-type, extension, or URI to a
// (Parser, Formatter) pair. Two formats are built in -- flat properties
// and URL-encoded -- everything else, including the YAML plug-in in
// media/yaml, registers itself through the same mechanism described in
// that package's documentation.
package ezkv
