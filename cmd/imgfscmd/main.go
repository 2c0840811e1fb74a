// Command imgfscmd is the command-line interface to an ImgFS container.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/epfl-sysnet/imgfs/internal/imgfscli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := imgfscli.Run(os.Stdout, os.Stderr, os.Args, env, sigCh)

	os.Exit(exitCode)
}
