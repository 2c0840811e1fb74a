package imgfsd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// shutdownGrace bounds how long Run waits for in-flight requests to finish
// after the first SIGINT/SIGTERM before forcing a close (spec.md §5).
const shutdownGrace = 5 * time.Second

// Run opens cfg.Container, serves it over HTTP at cfg.Listen until a signal
// arrives on sigCh, and returns a process exit code. It is the concurrency
// model of spec.md §5: net/http.Server's Serve loop spawns one goroutine per
// accepted connection (the "parallel workers, no bounded pool" model), all
// of them funneled through the engine's single gate.
func Run(cfg Config, errOut io.Writer, sigCh <-chan os.Signal) int {
	fs := fsx.NewReal()

	exists, err := fs.Exists(cfg.Container)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	var engine *imgfs.Engine
	if exists {
		engine, err = imgfs.Open(fs, cfg.Container)
	} else {
		engine, err = imgfs.Create(fs, cfg.Container, imgfs.CreateOptions{})
	}

	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	defer engine.Close()

	srv := NewServer(engine, cfg, errOut)

	httpSrv := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Handler(),
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}

		return 0
	case <-sigCh:
		fmt.Fprintln(errOut, "shutting down with", shutdownGrace, "timeout...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	// A second signal during the grace period forces an immediate close.
	go func() {
		select {
		case <-sigCh:
			_ = httpSrv.Close()
		case <-ctx.Done():
		}
	}()

	if err := httpSrv.Shutdown(ctx); err != nil {
		fmt.Fprintln(errOut, "forced close:", err)
		return 1
	}

	return 0
}
