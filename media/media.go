package media

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSyntax indicates the input could not be parsed as the expected format.
var ErrSyntax = errors.New("media: syntax error")

// Pair is one ordered key/value entry, the unit [Parser] and [Formatter]
// operate on. It carries no provenance or flags; callers that need those
// (ezkv's KeyValue) convert to and from Pair at the registry boundary.
type Pair struct {
	Key   string
	Value string
}

// Emit is called once per pair, in document order, by [Parser.Parse].
// Returning a non-nil error aborts parsing; the error propagates from Parse.
type Emit func(Pair) error

// Parser reads a document and reports each key/value pair it contains, in
// order, via emit.
type Parser interface {
	Parse(r io.Reader, emit Emit) error
}

// Formatter writes an ordered list of pairs back out as a document.
type Formatter interface {
	Format(w io.Writer, pairs []Pair) error
}

// ParserFunc adapts a function to a [Parser].
type ParserFunc func(r io.Reader, emit Emit) error

// Parse implements [Parser].
func (f ParserFunc) Parse(r io.Reader, emit Emit) error { return f(r, emit) }

// FormatterFunc adapts a function to a [Formatter].
type FormatterFunc func(w io.Writer, pairs []Pair) error

// Format implements [Formatter].
func (f FormatterFunc) Format(w io.Writer, pairs []Pair) error { return f(w, pairs) }

// entry is one registered media binding.
type entry struct {
	order      int
	names      []string // media-type strings, e.g. "text/x-properties"
	extensions []string // file extensions, without the leading dot
	parser     Parser
	formatter  Formatter
}

// Registry is a finder, composed of an order-sorted list of registrations,
// that resolves a media-type string, file extension, or URI path to a
// (Parser, Formatter) pair. Built-ins register at order -127; callers
// extending the registry default to order 0 unless they want to override
// an existing binding, in which case a lower (more negative) order wins.
//
// A Registry is safe for concurrent reads once construction (all Register
// calls) is complete; it performs no registration internally after that
// point.
type Registry struct {
	entries []entry
}

// NewRegistry returns a Registry pre-loaded with the built-in [Properties]
// and [URLEncoded] formats.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(-127, []string{"text/x-java-properties", "text/x-properties"}, []string{"properties", "props"}, Properties{}, Properties{})
	r.Register(-127, []string{"application/x-www-form-urlencoded"}, []string{"urlencoded"}, URLEncoded{}, URLEncoded{})

	return r
}

// Register adds a binding to the registry. Lower order values are
// preferred by [Registry.ByName] and [Registry.ByExtension] when more than
// one binding matches.
func (r *Registry) Register(order int, names, extensions []string, p Parser, f Formatter) {
	r.entries = append(r.entries, entry{
		order:      order,
		names:      names,
		extensions: extensions,
		parser:     p,
		formatter:  f,
	})
}

// ByName finds a binding whose registered media-type names contain name
// (case-insensitive). It returns the lowest-order match.
func (r *Registry) ByName(name string) (Parser, Formatter, bool) {
	name = strings.ToLower(name)

	return r.find(func(e entry) bool {
		for _, n := range e.names {
			if strings.ToLower(n) == name {
				return true
			}
		}

		return false
	})
}

// ByExtension finds a binding whose registered extensions contain ext
// (case-insensitive, leading dot optional). It returns the lowest-order
// match.
func (r *Registry) ByExtension(ext string) (Parser, Formatter, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	return r.find(func(e entry) bool {
		for _, x := range e.extensions {
			if strings.ToLower(x) == ext {
				return true
			}
		}

		return false
	})
}

// ByURI extracts the extension from uri's path and delegates to
// [Registry.ByExtension].
func (r *Registry) ByURI(uri string) (Parser, Formatter, bool) {
	path := uri
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return nil, nil, false
	}

	return r.ByExtension(path[i+1:])
}

func (r *Registry) find(match func(entry) bool) (Parser, Formatter, bool) {
	best := -1

	for i, e := range r.entries {
		if !match(e) {
			continue
		}

		if best == -1 || e.order < r.entries[best].order {
			best = i
		}
	}

	if best == -1 {
		return nil, nil, false
	}

	return r.entries[best].parser, r.entries[best].formatter, true
}

// SyntaxError wraps an underlying parse failure with the format name that
// produced it.
func SyntaxError(format string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrSyntax, format, cause)
}
