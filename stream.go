package ezkv

import (
	"fmt"
	"io"

	"github.com/jstachio/ezkv/media"
)

// KeyValues is a lazy, possibly-infinite sequence of (KeyValue, error)
// pairs, in the spirit of an iter.Seq2. Calling a KeyValues runs it once;
// yield is invoked for each element in order and must return true to
// continue or false to stop early. A non-nil error terminates the
// sequence after that element is yielded. Every combinator here
// (Map, Filter, FlatMap, Expand, Redact) wraps the receiver rather than
// consuming it, so a KeyValues can be composed and re-run from scratch
// as many times as its underlying source allows; [KeyValues.Memoize]
// detaches it from that source entirely.
type KeyValues func(yield func(KeyValue, error) bool)

// Of returns a KeyValues that yields exactly the given values, in order.
func Of(values ...KeyValue) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		for _, v := range values {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Fail returns a KeyValues that yields a single error and nothing else.
func Fail(err error) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		yield(KeyValue{}, err)
	}
}

// Map applies f to every value in the sequence. f runs only on values;
// errors pass through unchanged.
func (kvs KeyValues) Map(f func(KeyValue) KeyValue) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		kvs(func(kv KeyValue, err error) bool {
			if err != nil {
				return yield(kv, err)
			}

			return yield(f(kv), nil)
		})
	}
}

// Filter keeps only values for which keep returns true. Errors always
// pass through.
func (kvs KeyValues) Filter(keep func(KeyValue) bool) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		kvs(func(kv KeyValue, err error) bool {
			if err != nil {
				return yield(kv, err)
			}

			if !keep(kv) {
				return true
			}

			return yield(kv, nil)
		})
	}
}

// FlatMap replaces each value with zero or more values produced by f,
// run in f's yield order. Errors from the receiver pass through
// unchanged; f is never called for an error element.
func (kvs KeyValues) FlatMap(f func(KeyValue) KeyValues) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		kvs(func(kv KeyValue, err error) bool {
			if err != nil {
				return yield(kv, err)
			}

			cont := true

			f(kv)(func(out KeyValue, ferr error) bool {
				cont = yield(out, ferr)

				return cont
			})

			return cont
		})
	}
}

// Expand runs [Expand] against every value's raw form using a chained
// resolution (§4.4): a key already processed earlier in this same pass
// resolves to its expanded value; a key not yet processed resolves to
// its raw value (so forward references within one resource still work);
// falling through to vars beyond that. Entries flagged [NoInterpolation]
// are passed through with Expanded() left equal to Value(); [Sensitive]
// entries ARE expanded (this is the "local" pass; see [KeyValues.ExpandGlobal]
// for the scheduler's global re-interpolation, which is not). A failure
// to expand one entry terminates the sequence with that error.
func (kvs KeyValues) Expand(vars Variables) KeyValues {
	return kvs.expand(vars, false)
}

// ExpandGlobal is like [KeyValues.Expand] except [Sensitive] entries are
// also left untouched (Expanded() == Value()), matching the invariant
// that a sensitive value is never rewritten by the scheduler's global
// re-interpolation pass (§3, §4.4).
func (kvs KeyValues) ExpandGlobal(vars Variables) KeyValues {
	return kvs.expand(vars, true)
}

func (kvs KeyValues) expand(vars Variables, skipSensitive bool) KeyValues {
	return kvs.expandWith(vars, skipSensitive, Expand)
}

// expandDeferred is the scheduler's version of [KeyValues.expand]: a
// reference to a variable that is not yet known (e.g. contributed by a
// resource later in the stack) is left verbatim instead of failing the
// whole pass. Used for the local (step 3) and per-resource global (step 8)
// passes in scheduler.go; the final pass after the stack drains uses the
// strict public Expand/ExpandGlobal so a truly missing variable still
// surfaces as an error.
func (kvs KeyValues) expandDeferred(vars Variables, skipSensitive bool) KeyValues {
	return kvs.expandWith(vars, skipSensitive, expandDeferred)
}

func (kvs KeyValues) expandWith(vars Variables, skipSensitive bool, expandFn func(string, Variables) (string, error)) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		rawView := map[string]string{}

		kvs(func(kv KeyValue, err error) bool {
			if err == nil {
				rawView[kv.Key] = kv.Value()
			}

			return true
		})

		resolved := map[string]string{}

		kvs(func(kv KeyValue, err error) bool {
			if err != nil {
				return yield(kv, err)
			}

			if kv.IsNoInterpolation() || (skipSensitive && kv.IsSensitive()) {
				resolved[kv.Key] = kv.Value()

				return yield(kv.WithExpanded(kv.Value()), nil)
			}

			local := Chain(FromMap(resolved), FromMap(rawView), vars)

			expanded, eerr := expandFn(kv.Value(), local)
			if eerr != nil {
				return yield(kv, fmt.Errorf("key %q: %w", kv.Key, eerr))
			}

			resolved[kv.Key] = expanded

			return yield(kv.WithExpanded(expanded), nil)
		})
	}
}

// Redact replaces the expanded value of every [KeyValue.IsSensitive]
// entry with "REDACTED", leaving Value() untouched.
func (kvs KeyValues) Redact() KeyValues {
	return kvs.Map(func(kv KeyValue) KeyValue {
		if !kv.IsSensitive() {
			return kv
		}

		return kv.WithExpanded("REDACTED")
	})
}

// Collect drains the sequence into a slice, stopping at and returning
// the first error encountered.
func (kvs KeyValues) Collect() ([]KeyValue, error) {
	var (
		out []KeyValue
		err error
	)

	kvs(func(kv KeyValue, e error) bool {
		if e != nil {
			err = e

			return false
		}

		out = append(out, kv)

		return true
	})

	return out, err
}

// Memoize materializes the sequence once and returns a new KeyValues
// backed by the resulting slice, replayable any number of times without
// touching the original source again. If the original sequence errors,
// Memoize returns that error and a nil KeyValues.
func (kvs KeyValues) Memoize() (KeyValues, error) {
	values, err := kvs.Collect()
	if err != nil {
		return nil, err
	}

	return Of(values...), nil
}

// Last returns the last entry with the given key (later entries win
// ties, matching accumulation order) and whether one was found. It
// drains the sequence in a single pass and returns the first error it
// hits, if any.
func (kvs KeyValues) Last(key string) (KeyValue, bool, error) {
	var (
		found KeyValue
		ok    bool
		err   error
	)

	kvs(func(kv KeyValue, e error) bool {
		if e != nil {
			err = e

			return false
		}

		if kv.Key == key {
			found = kv
			ok = true
		}

		return true
	})

	if err != nil {
		return KeyValue{}, false, err
	}

	return found, ok, nil
}

// ToMap collapses the sequence to a map of key to last-wins expanded
// value, draining the whole sequence. It returns the first error
// encountered, if any.
func (kvs KeyValues) ToMap() (map[string]string, error) {
	values, err := kvs.Collect()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(values))
	for _, kv := range values {
		out[kv.Key] = kv.Expanded()
	}

	return out, nil
}

// ToPairs converts the sequence to a slice of [media.Pair], using the
// display (redaction-aware) value of each entry. It drains the sequence
// and returns the first error encountered, if any.
func (kvs KeyValues) ToPairs() ([]media.Pair, error) {
	values, err := kvs.Collect()
	if err != nil {
		return nil, err
	}

	pairs := make([]media.Pair, 0, len(values))
	for _, kv := range values {
		pairs = append(pairs, media.Pair{Key: kv.Key, Value: kv.DisplayValue()})
	}

	return pairs, nil
}

// Format drains the sequence and writes it out using f, redacting
// sensitive values first.
func (kvs KeyValues) Format(w io.Writer, f media.Formatter) error {
	pairs, err := kvs.Redact().ToPairs()
	if err != nil {
		return err
	}

	return f.Format(w, pairs)
}

// FromPairs lifts plain [media.Pair] values (as produced by a
// [media.Parser]) into a KeyValues, stamping each with meta and a
// 1-based Source.Index.
func FromPairs(pairs []media.Pair, meta Meta) KeyValues {
	return func(yield func(KeyValue, error) bool) {
		for i, p := range pairs {
			m := meta
			m.Source.Index = i + 1

			if !yield(NewKeyValue(p.Key, p.Value, m), nil) {
				return
			}
		}
	}
}
