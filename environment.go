package ezkv

import (
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"strings"

	"golang.org/x/term"
)

// Logger receives the structured events described in §6. A nil Logger is
// never passed to a [Loader] or the scheduler; [NoopLogger] is the zero
// value used when a caller does not want logging.
type Logger interface {
	Load(r *Resource)
	Loaded(r *Resource)
	Missing(r *Resource, cause error)
	Warn(msg string)
	Fatal(err error)
}

// NoopLogger discards every event.
type NoopLogger struct{}

func (NoopLogger) Load(*Resource)          {}
func (NoopLogger) Loaded(*Resource)        {}
func (NoopLogger) Missing(*Resource, error) {}
func (NoopLogger) Warn(string)             {}
func (NoopLogger) Fatal(error)             {}

// ClasspathLoader resolves classpath-style paths against an ordered
// search path of roots (the Go analogue of a JVM classpath), as used by
// the "classpath" and "classpaths" resource schemes.
type ClasspathLoader interface {
	// Open opens the first root under which p exists.
	Open(p string) (fs.File, error)
	// Enumerate returns every root-relative path matching pattern (a
	// path/filepath.Match-style glob) across all roots, deduplicated by
	// the path itself and in root order.
	Enumerate(pattern string) ([]string, error)
}

// fsClasspath is a [ClasspathLoader] backed by an ordered list of
// [fs.FS] roots.
type fsClasspath struct {
	roots []fs.FS
}

// NewClasspath returns a [ClasspathLoader] searching roots in order.
func NewClasspath(roots ...fs.FS) ClasspathLoader {
	return &fsClasspath{roots: roots}
}

func (c *fsClasspath) Open(p string) (fs.File, error) {
	p = strings.TrimPrefix(p, "/")

	var firstErr error

	for _, root := range c.roots {
		f, err := root.Open(p)
		if err == nil {
			return f, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = fs.ErrNotExist
	}

	return nil, firstErr
}

func (c *fsClasspath) Enumerate(pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, "/")

	var out []string

	seen := map[string]bool{}

	for _, root := range c.roots {
		matches, err := fs.Glob(root, pattern)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}

			seen[m] = true

			out = append(out, m)
		}
	}

	return out, nil
}

// Environment is the host collaborator described in §6: every piece of
// ambient state the core reads (process args, env/host facts, stdin,
// randomness, CWD, a classpath, a default filesystem, and a logger) is
// reached only through this interface, never directly from the "os"
// package, so tests can substitute a fully deterministic fake.
type Environment interface {
	Args() []string
	SystemProperties() (map[string]string, error)
	EnvironmentVariables() map[string]string
	Stdin() io.Reader
	// StdinIsTerminal reports whether Stdin is an interactive terminal.
	// The built-in "stdin" scheme does not consult it; that loader reads
	// only when enabled by its parameters or the process args.
	StdinIsTerminal() bool
	Rand() *rand.Rand
	CWD() (string, bool)
	Classpath() ClasspathLoader
	FS() fs.FS
	Logger() Logger
}

// DefaultEnvironment is the production [Environment]: os.Args,
// host/process facts via [SystemFacts] (gopsutil-backed; see
// loader_system.go), os.Environ, os.Stdin (with a golang.org/x/term
// terminal probe exposed as StdinIsTerminal), os.Getwd, and an [fs.FS]
// rooted at the OS filesystem.
type DefaultEnvironment struct {
	ClasspathRoots []fs.FS
	Log            Logger
	rng            *rand.Rand
}

// NewDefaultEnvironment returns a DefaultEnvironment with no classpath
// roots and a [NoopLogger].
func NewDefaultEnvironment() *DefaultEnvironment {
	return &DefaultEnvironment{Log: NoopLogger{}}
}

func (e *DefaultEnvironment) Args() []string { return os.Args[1:] }

func (e *DefaultEnvironment) SystemProperties() (map[string]string, error) {
	return SystemFacts()
}

func (e *DefaultEnvironment) EnvironmentVariables() map[string]string {
	out := map[string]string{}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}

	return out
}

func (e *DefaultEnvironment) Stdin() io.Reader { return os.Stdin }

func (e *DefaultEnvironment) StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (e *DefaultEnvironment) Rand() *rand.Rand {
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return e.rng
}

func (e *DefaultEnvironment) CWD() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	return wd, true
}

func (e *DefaultEnvironment) Classpath() ClasspathLoader {
	return NewClasspath(e.ClasspathRoots...)
}

func (e *DefaultEnvironment) FS() fs.FS { return osFS{} }

func (e *DefaultEnvironment) Logger() Logger {
	if e.Log == nil {
		return NoopLogger{}
	}

	return e.Log
}

// osFS adapts the OS filesystem to [fs.FS] rooted at "/", since os.Open
// accepts absolute paths directly but fs.FS requires relative ones.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(path.Clean("/" + name))
}
