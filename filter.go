package ezkv

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterTarget selects what part of a [KeyValue] a filter inspects and,
// for sed/grep, rewrites.
type FilterTarget int

const (
	// TargetKey operates on KeyValue.Key. It is the default when a
	// filter id carries no "_key"/"_val"/"_value" suffix.
	TargetKey FilterTarget = iota
	// TargetValue operates on KeyValue.Expanded().
	TargetValue
)

// splitTarget strips a trailing "_key", "_val", or "_value" suffix from a
// filter id, returning the base id (e.g. "grep") and the selected target.
func splitTarget(id string) (string, FilterTarget) {
	switch {
	case strings.HasSuffix(id, "_key"):
		return strings.TrimSuffix(id, "_key"), TargetKey
	case strings.HasSuffix(id, "_value"):
		return strings.TrimSuffix(id, "_value"), TargetValue
	case strings.HasSuffix(id, "_val"):
		return strings.TrimSuffix(id, "_val"), TargetValue
	default:
		return id, TargetKey
	}
}

// Filter implements one filter-pipeline stage, dispatched by base id
// (the filter id with any "_key"/"_val"/"_value" suffix already removed).
// An implementation not applicable to id must report false from
// Applicable so [FilterRegistry.Apply] can try the next registrant,
// mirroring the media/loader finder pattern.
type Filter interface {
	Applicable(baseID string) bool
	Apply(kvs []KeyValue, expr string, target FilterTarget, ignore func(string) bool) ([]KeyValue, error)
}

type filterEntry struct {
	order  int
	filter Filter
}

// FilterRegistry composes an order-sorted list of [Filter] implementations
// and dispatches by base filter id, first match wins.
type FilterRegistry struct {
	entries []filterEntry
}

// NewFilterRegistry returns a FilterRegistry pre-loaded with the built-in
// grep, sed, and join filters at order -127.
func NewFilterRegistry() *FilterRegistry {
	reg := &FilterRegistry{}
	reg.Register(-127, grepFilter{})
	reg.Register(-127, sedFilter{})
	reg.Register(-127, joinFilter{})

	return reg
}

// Register adds f to the registry. Lower order values are tried first.
func (r *FilterRegistry) Register(order int, f Filter) {
	r.entries = append(r.entries, filterEntry{order: order, filter: f})
}

func (r *FilterRegistry) find(baseID string) Filter {
	best := -1

	for i, e := range r.entries {
		if !e.filter.Applicable(baseID) {
			continue
		}

		if best == -1 || e.order < r.entries[best].order {
			best = i
		}
	}

	if best == -1 {
		return nil
	}

	return r.entries[best].filter
}

// Apply runs spec against kvs. An id matching no registered [Filter] is a
// no-op (§6: "unknown filter id = empty filter output"), returning kvs
// unchanged rather than an error. An id naming a registered filter followed
// by a suffix other than "_key", "_val", or "_value" fails with
// [ErrBadFilterExpression].
func (r *FilterRegistry) Apply(spec FilterSpec, kvs []KeyValue, ignore func(string) bool) ([]KeyValue, error) {
	baseID, target := splitTarget(spec.ID)

	f := r.find(baseID)
	if f == nil {
		if base, _, ok := strings.Cut(spec.ID, "_"); ok && r.find(base) != nil {
			return nil, fmt.Errorf("%w: unknown target suffix in filter id %q", ErrBadFilterExpression, spec.ID)
		}

		return kvs, nil
	}

	return f.Apply(kvs, spec.Expression, target, ignore)
}

// ApplyChain runs every spec in specs against kvs in order.
func (r *FilterRegistry) ApplyChain(specs []FilterSpec, kvs []KeyValue, ignore func(string) bool) ([]KeyValue, error) {
	cur := kvs

	for _, spec := range specs {
		next, err := r.Apply(spec, cur, ignore)
		if err != nil {
			return nil, err
		}

		cur = next
	}

	return cur, nil
}

func target(kv KeyValue, t FilterTarget) string {
	if t == TargetKey {
		return kv.Key
	}

	return kv.Expanded()
}

func withTarget(kv KeyValue, t FilterTarget, s string) KeyValue {
	if t == TargetKey {
		kv.Key = s

		return kv
	}

	return kv.WithValue(s)
}

// grepFilter retains entries whose target matches expr as a regular
// expression anywhere in the string.
type grepFilter struct{}

func (grepFilter) Applicable(id string) bool { return id == "grep" }

func (grepFilter) Apply(kvs []KeyValue, expr string, t FilterTarget, ignore func(string) bool) ([]KeyValue, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: grep: %w", ErrBadFilterExpression, err)
	}

	out := make([]KeyValue, 0, len(kvs))

	for _, kv := range kvs {
		if ignore != nil && ignore(kv.Key) {
			out = append(out, kv)

			continue
		}

		if re.MatchString(target(kv, t)) {
			out = append(out, kv)
		}
	}

	return out, nil
}

// sedCommand is a parsed "s/pattern/replacement/flags" or "d" verb,
// optionally guarded by an address regex.
type sedCommand struct {
	addr        *regexp.Regexp
	delete      bool
	pattern     *regexp.Regexp
	replacement string
	global      bool
}

// parseSedExpr parses the tiny sed dialect described in §4.5.
func parseSedExpr(expr string) (sedCommand, error) {
	var cmd sedCommand

	rest := expr

	if strings.HasPrefix(rest, "/") {
		end, addrSrc, ok := scanDelimited(rest, 1, '/')
		if !ok {
			return cmd, fmt.Errorf("%w: sed: unterminated address %q", ErrBadFilterExpression, expr)
		}

		re, err := regexp.Compile(addrSrc)
		if err != nil {
			return cmd, fmt.Errorf("%w: sed: bad address: %w", ErrBadFilterExpression, err)
		}

		cmd.addr = re
		rest = strings.TrimSpace(rest[end:])
	}

	switch {
	case rest == "d":
		cmd.delete = true

		return cmd, nil
	case strings.HasPrefix(rest, "s"):
		if len(rest) < 2 {
			return cmd, fmt.Errorf("%w: sed: incomplete substitute command %q", ErrBadFilterExpression, expr)
		}

		delim := rune(rest[1])

		parts, err := splitSedParts(rest[2:], delim)
		if err != nil {
			return cmd, fmt.Errorf("%w: sed: %w", ErrBadFilterExpression, err)
		}

		pat, repl, flags := parts[0], parts[1], parts[2]

		re, err := regexp.Compile(pat)
		if err != nil {
			return cmd, fmt.Errorf("%w: sed: bad pattern: %w", ErrBadFilterExpression, err)
		}

		cmd.pattern = re
		cmd.replacement = repl
		cmd.global = strings.Contains(flags, "g")

		for _, fl := range flags {
			if fl != 'g' {
				return cmd, fmt.Errorf("%w: sed: unsupported flag %q", ErrBadFilterExpression, string(fl))
			}
		}

		return cmd, nil
	default:
		return cmd, fmt.Errorf("%w: sed: unsupported command %q", ErrBadFilterExpression, expr)
	}
}

// scanDelimited finds the end of a delim-terminated run starting at
// start (the content after an opening delim already consumed), honoring
// "\<delim>" as an escaped, literal delimiter. It returns the index just
// past the closing delimiter and the unescaped content.
func scanDelimited(s string, start int, delim byte) (int, string, bool) {
	var sb strings.Builder

	i := start
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == delim:
			sb.WriteByte(delim)
			i += 2
		case s[i] == delim:
			return i + 1, sb.String(), true
		default:
			sb.WriteByte(s[i])
			i++
		}
	}

	return 0, "", false
}

// splitSedParts splits the remainder of an "s<delim>...<delim>...<delim>flags"
// command into [pattern, replacement, flags].
func splitSedParts(s string, delim rune) ([3]string, error) {
	var out [3]string

	b := byte(delim)

	end, pattern, ok := scanDelimited(s, 0, b)
	if !ok {
		return out, fmt.Errorf("unterminated pattern in %q", s)
	}

	out[0] = pattern
	s = s[end:]

	end, repl, ok := scanDelimited(s, 0, b)
	if !ok {
		return out, fmt.Errorf("unterminated replacement in %q", s)
	}

	out[1] = repl
	out[2] = s[end:]

	return out, nil
}

// sedFilter applies a tiny sed dialect (s/.../.../[g], d) per §4.5.
type sedFilter struct{}

func (sedFilter) Applicable(id string) bool { return id == "sed" }

func (sedFilter) Apply(kvs []KeyValue, expr string, t FilterTarget, ignore func(string) bool) ([]KeyValue, error) {
	cmd, err := parseSedExpr(expr)
	if err != nil {
		return nil, err
	}

	out := make([]KeyValue, 0, len(kvs))

	for _, kv := range kvs {
		if ignore != nil && ignore(kv.Key) {
			out = append(out, kv)

			continue
		}

		s := target(kv, t)

		if cmd.addr != nil && !cmd.addr.MatchString(s) {
			out = append(out, kv)

			continue
		}

		if cmd.delete {
			continue
		}

		out = append(out, withTarget(kv, t, sedSubstitute(cmd, s)))
	}

	return out, nil
}

func sedSubstitute(cmd sedCommand, s string) string {
	if cmd.global {
		return cmd.pattern.ReplaceAllString(s, cmd.replacement)
	}

	loc := cmd.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}

	expanded := cmd.pattern.ExpandString(nil, cmd.replacement, s, loc)

	return s[:loc[0]] + string(expanded) + s[loc[1]:]
}

// joinFilter groups entries sharing a key and concatenates their expanded
// values with a separator, always targeting values regardless of any
// suffix on the filter id.
type joinFilter struct{}

func (joinFilter) Applicable(id string) bool { return id == "join" }

func (joinFilter) Apply(kvs []KeyValue, sep string, _ FilterTarget, ignore func(string) bool) ([]KeyValue, error) {
	type group struct {
		first KeyValue
		parts []string
	}

	order := make([]string, 0, len(kvs))
	groups := map[string]*group{}

	out := make([]KeyValue, 0, len(kvs))

	for _, kv := range kvs {
		if ignore != nil && ignore(kv.Key) {
			out = append(out, kv)

			continue
		}

		g, ok := groups[kv.Key]
		if !ok {
			g = &group{first: kv}
			groups[kv.Key] = g
			order = append(order, kv.Key)
			out = append(out, kv) // placeholder position; value patched below
		}

		g.parts = append(g.parts, kv.Expanded())
	}

	joined := make(map[string]string, len(order))
	for _, k := range order {
		joined[k] = strings.Join(groups[k].parts, sep)
	}

	final := make([]KeyValue, 0, len(out))
	seen := map[string]bool{}

	for _, kv := range out {
		if ignore != nil && ignore(kv.Key) {
			final = append(final, kv)

			continue
		}

		if seen[kv.Key] {
			continue
		}

		seen[kv.Key] = true
		final = append(final, kv.WithValue(joined[kv.Key]))
	}

	return final, nil
}
