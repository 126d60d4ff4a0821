package ezkv

import (
	"fmt"
	"strings"
)

const profileToken = "__PROFILE__"

// profileLoader implements the "profile.<sub-scheme>" meta-loader
// (§4.7): it requires a "profile" parameter (CSV) and the literal token
// "__PROFILE__" somewhere in the resource's URI, and synthesizes one
// child resource per profile with the token substituted. The child's own
// scheme is dispatched normally by the scheduler on its next pop.
type profileLoader struct{}

func (profileLoader) Applicable(scheme string) bool {
	return strings.HasPrefix(scheme, "profile.") && scheme != "profile."
}

func (profileLoader) Load(_ *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	subScheme := strings.TrimPrefix(r.scheme(), "profile.")

	csv, ok := r.Parameters.Get("profile")
	if !ok || strings.TrimSpace(csv) == "" {
		return nil, nil, fmt.Errorf("%w: profile.%s resource requires a \"profile\" parameter", ErrResourceKeyInvalid, subScheme)
	}

	if !strings.Contains(r.URI, profileToken) {
		return nil, nil, fmt.Errorf("%w: profile.%s URI %q has no %s token", ErrResourceKeyInvalid, subScheme, r.URI, profileToken)
	}

	children := make([]*Resource, 0, strings.Count(csv, ",")+1)

	for _, p := range strings.Split(csv, ",") {
		profile := strings.TrimSpace(p)
		if profile == "" {
			continue
		}

		child := r.clone()
		child.URI = subScheme + ":" + strings.ReplaceAll(r.opaque(), profileToken, profile)
		child.Name = ""
		child.Normalized = true
		children = append(children, child)
	}

	return Of(), children, nil
}
