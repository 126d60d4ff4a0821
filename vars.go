package ezkv

// Variables is a fallback lookup used only by interpolation ([Expand]); unlike
// the accumulated result, a variable binding never appears in the final
// output. A Variables function returns (value, true) when it knows name,
// or ("", false) to let the next link in the chain try.
type Variables func(name string) (string, bool)

// FromMap returns a Variables backed by a static map.
func FromMap(m map[string]string) Variables {
	return func(name string) (string, bool) {
		v, ok := m[name]

		return v, ok
	}
}

// Chain composes links in order: the first link to return true wins. A
// nil link in the chain is skipped.
func Chain(links ...Variables) Variables {
	return func(name string) (string, bool) {
		for _, link := range links {
			if link == nil {
				continue
			}

			if v, ok := link(name); ok {
				return v, true
			}
		}

		return "", false
	}
}

// Empty is a Variables that never resolves anything.
func Empty() Variables {
	return func(string) (string, bool) { return "", false }
}
