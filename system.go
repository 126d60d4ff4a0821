package ezkv

import (
	"context"

	"github.com/jstachio/ezkv/media"
)

// System composes every collaborator the scheduler needs: the media,
// loader, and filter registries, the host [Environment], the in-process
// provider set, and the "mem" scheme's content map. It is the single
// entrypoint an embedding application builds once and calls [System.Load]
// or [System.LoadRoots] against for each bootstrap.
type System struct {
	Env     Environment
	Media   *media.Registry
	Loaders *LoaderRegistry
	Filters *FilterRegistry
	Vars    Variables

	providers []Provider
	mem       map[string]string
}

// NewSystem returns a System wired with the default media, loader, and
// filter registries and a [NewDefaultEnvironment]. Use the With* methods
// to customize it before calling Load.
func NewSystem() *System {
	return &System{
		Env:     NewDefaultEnvironment(),
		Media:   media.NewRegistry(),
		Loaders: NewDefaultLoaderRegistry(),
		Filters: NewFilterRegistry(),
		Vars:    Empty(),
		mem:     map[string]string{},
	}
}

// WithEnv replaces the host [Environment] and returns s.
func (s *System) WithEnv(env Environment) *System {
	s.Env = env

	return s
}

// WithVars sets the outermost variables link consulted beneath the
// scheduler's own store, and returns s.
func (s *System) WithVars(vars Variables) *System {
	s.Vars = vars

	return s
}

// WithProvider registers a [Provider] for the "provider" scheme and
// returns s.
func (s *System) WithProvider(p Provider) *System {
	s.providers = append(s.providers, p)

	return s
}

// WithMemResource registers content under uri for the "mem" scheme and
// returns s. It exists for tests and small embedded defaults that should
// not require real file or network I/O; see loader_mem.go.
func (s *System) WithMemResource(uri, content string) *System {
	if s.mem == nil {
		s.mem = map[string]string{}
	}

	s.mem[uri] = content

	return s
}

// scheduler builds the one-shot [Scheduler] for a Load call, snapshotting
// the System's current registries and collaborators.
func (s *System) scheduler() *Scheduler {
	return &Scheduler{
		Loaders:   s.Loaders,
		Filters:   s.Filters,
		Env:       s.Env,
		Media:     s.Media,
		Providers: s.providers,
		Mem:       s.mem,
	}
}

// Load runs the scheduler over one or more root resource URIs, in order,
// and returns the fully resolved, memoized result. ctx governs
// cancellation of any network, classpath, or file I/O a loader performs.
func (s *System) Load(ctx context.Context, flags LoadFlag, uris ...string) (KeyValues, error) {
	roots := make([]RootSource, 0, len(uris))
	for _, uri := range uris {
		roots = append(roots, FromURI(uri, flags))
	}

	return s.scheduler().Load(ctx, s.Vars, roots...)
}

// LoadRoots runs the scheduler over an arbitrary mix of [RootSource]
// values (URI-addressed resources and inline [KeyValues] sequences),
// letting a caller combine programmatic defaults with file-backed
// overrides in a single pass. ctx governs cancellation of any network,
// classpath, or file I/O a loader performs.
func (s *System) LoadRoots(ctx context.Context, roots ...RootSource) (KeyValues, error) {
	return s.scheduler().Load(ctx, s.Vars, roots...)
}
