package yaml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/jstachio/ezkv/media"
)

// MediaType is the media-type string this plug-in registers under.
const MediaType = "application/yaml"

// Extensions are the file extensions this plug-in registers under.
var Extensions = []string{"yaml", "yml"}

// Format is a [media.Parser] and [media.Formatter] for YAML documents,
// flattening nested structure to dotted keys on parse and reconstructing it
// on format.
type Format struct{}

// Register adds this plug-in's Parser and Formatter to reg at the given
// order. Order 0 is a sensible default for a user-registered plug-in (see
// [media.Registry.Register]).
func Register(reg *media.Registry, order int) {
	f := Format{}
	reg.Register(order, []string{MediaType}, Extensions, f, f)
}

// Parse implements [media.Parser]. The YAML document is parsed with
// comment support (unused here, but keeps parity with the AST the rest of
// the retrieval pack's YAML tooling walks) and flattened depth-first so
// that mapping key order is preserved.
func (Format) Parse(r io.Reader, emit media.Emit) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return media.SyntaxError("yaml", err)
	}

	if isBlank(data) {
		return nil
	}

	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return media.SyntaxError("yaml", err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil
	}

	return walk(file.Docs[0].Body, "", emit)
}

func isBlank(data []byte) bool {
	for _, b := range data {
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}

	return true
}

func walk(node ast.Node, prefix string, emit media.Emit) error {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, mvn := range n.Values {
			if err := walkEntry(mvn, prefix, emit); err != nil {
				return err
			}
		}

		return nil
	case *ast.MappingValueNode:
		return walkEntry(n, prefix, emit)
	case *ast.SequenceNode:
		for i, v := range n.Values {
			childPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			if err := walk(v, childPrefix, emit); err != nil {
				return err
			}
		}

		return nil
	case *ast.NullNode:
		return emitScalar(prefix, "", emit)
	default:
		return emitScalar(prefix, node.String(), emit)
	}
}

func walkEntry(mvn *ast.MappingValueNode, prefix string, emit media.Emit) error {
	key := strings.Trim(mvn.Key.String(), `"'`)

	childPrefix := key
	if prefix != "" {
		childPrefix = prefix + "." + key
	}

	return walk(mvn.Value, childPrefix, emit)
}

func emitScalar(key, value string, emit media.Emit) error {
	if key == "" {
		return nil
	}

	return emit(media.Pair{Key: key, Value: value})
}

// Format implements [media.Formatter]. Dotted keys are reconstructed into
// nested mappings; a "[i]" path segment becomes a sequence index.
func (Format) Format(w io.Writer, pairs []media.Pair) error {
	root := map[string]any{}

	for _, p := range pairs {
		setPath(root, splitPath(p.Key), p.Value)
	}

	normalized := normalize(root)

	out, err := goyaml.MarshalWithOptions(normalized, goyaml.Indent(2))
	if err != nil {
		return media.SyntaxError("yaml", err)
	}

	_, err = w.Write(out)

	return err
}

// pathSeg is one segment of a flattened key: either a mapping key or a
// sequence index.
type pathSeg struct {
	key   string
	index int
	isIdx bool
}

func splitPath(key string) []pathSeg {
	var segs []pathSeg

	for _, part := range strings.Split(key, ".") {
		for part != "" {
			if i := strings.IndexByte(part, '['); i >= 0 {
				if i > 0 {
					segs = append(segs, pathSeg{key: part[:i]})
				}

				end := strings.IndexByte(part[i:], ']')
				if end < 0 {
					segs = append(segs, pathSeg{key: part})

					break
				}

				idx, err := strconv.Atoi(part[i+1 : i+end])
				if err == nil {
					segs = append(segs, pathSeg{index: idx, isIdx: true})
				}

				part = part[i+end+1:]

				continue
			}

			segs = append(segs, pathSeg{key: part})

			break
		}
	}

	return segs
}

func setPath(root map[string]any, segs []pathSeg, value string) {
	if len(segs) == 0 {
		return
	}

	cur := any(root)

	for i, seg := range segs {
		last := i == len(segs)-1

		switch m := cur.(type) {
		case map[string]any:
			if seg.isIdx {
				// Malformed path (index directly under a map); ignore.
				return
			}

			if last {
				m[seg.key] = value

				return
			}

			if _, ok := m[seg.key]; !ok {
				if segs[i+1].isIdx {
					m[seg.key] = []any{}
				} else {
					m[seg.key] = map[string]any{}
				}
			}

			cur = m[seg.key]
		case []any:
			if !seg.isIdx {
				return
			}

			for len(m) <= seg.index {
				m = append(m, nil)
			}

			if last {
				m[seg.index] = value
			} else if m[seg.index] == nil {
				if segs[i+1].isIdx {
					m[seg.index] = []any{}
				} else {
					m[seg.index] = map[string]any{}
				}
			}

			// Write back through the parent since append may reallocate.
			writeBack(root, segs[:i], m)
			cur = m[seg.index]
		}
	}
}

// writeBack re-assigns a possibly-reallocated slice into its parent
// container after an append inside setPath.
func writeBack(root map[string]any, parentSegs []pathSeg, slice []any) {
	if len(parentSegs) == 0 {
		return
	}

	cur := any(root)

	for i, seg := range parentSegs {
		last := i == len(parentSegs)-1

		switch m := cur.(type) {
		case map[string]any:
			if last {
				m[seg.key] = slice

				return
			}

			cur = m[seg.key]
		case []any:
			if last {
				m[seg.index] = slice

				return
			}

			cur = m[seg.index]
		}
	}
}

// normalize recurses through the nested map/slice structure built by
// setPath so that nil holes (from sparse sequence indices) serialize as
// YAML null rather than a Go-internal representation.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}

		return out
	default:
		return t
	}
}
