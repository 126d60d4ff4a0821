package ezkv

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// SystemFacts returns the small, fixed set of host/process facts the
// "system" scheme exposes in place of a JVM-style global system-properties
// map (§4.7): hostname, OS, platform, architecture, CPU count, process id, Go
// runtime version, and host boot time, each under a "system.<name>" key.
func SystemFacts() (map[string]string, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: reading host facts: %w", ErrMediaError, err)
	}

	counts, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("%w: reading cpu facts: %w", ErrMediaError, err)
	}

	return map[string]string{
		"system.hostname":   info.Hostname,
		"system.os":         info.OS,
		"system.platform":   info.Platform,
		"system.arch":       info.KernelArch,
		"system.cpus":       strconv.Itoa(counts),
		"system.pid":        strconv.Itoa(os.Getpid()),
		"system.go.version": runtime.Version(),
		"system.boot.time":  time.Unix(int64(info.BootTime), 0).UTC().Format(time.RFC3339), //nolint:gosec
	}, nil
}

// systemLoader implements the "system" scheme: host/process facts (see
// [SystemFacts]), or one fact selected by name in key-in-URI mode and
// re-parsed with the resource's media.
type systemLoader struct{}

func (systemLoader) Applicable(scheme string) bool { return scheme == "system" }

func (systemLoader) Load(ctx *LoaderContext, r *Resource) (KeyValues, []*Resource, error) {
	facts, err := ctx.Env.SystemProperties()
	if err != nil {
		return nil, nil, err
	}

	meta := Meta{Source: Source{URI: r.URI}}

	if key := splitSchemePath(r.opaque()); key != "" {
		parser, _, perr := resolveMedia(ctx.Media, r)
		if perr != nil {
			return nil, nil, perr
		}

		kvs, serr := singleKeyStream(key, facts, parser, meta)

		return kvs, nil, serr
	}

	return mapToKeyValues(facts, meta), nil, nil
}
