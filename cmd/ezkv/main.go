// Command ezkv loads and inspects layered key/value configuration built
// from the ezkv resource DSL: file, classpath, env, cmd, stdin, provider,
// and profile fan-out sources, resolved and interpolated into one ordered
// stream.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
