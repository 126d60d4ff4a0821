// Package media parses and formats flat key/value documents.
//
// A [Parser] turns a byte stream into an ordered sequence of key/value
// pairs; a [Formatter] does the reverse. Neither interface knows anything
// about resources, interpolation, or provenance -- those concerns live in
// the ezkv package, which adapts its own KeyValue records to and from the
// [Pair] shape used here. This split is what lets external packages (see
// media/yaml) register additional formats without importing ezkv itself.
//
// [Registry] looks up a (Parser, Formatter) pair by media-type string,
// file extension, or URI, preferring the lowest registered order value
// and, among equal orders, the earliest registration. Two formats are built
// in: [Properties] and [URLEncoded]. Everything else -- JSON5, XML, .env,
// YAML -- is expected to register itself the same way media/yaml does.
package media
