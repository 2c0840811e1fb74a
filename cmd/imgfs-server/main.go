// Command imgfs-server is the HTTP frontend for an ImgFS container.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/epfl-sysnet/imgfs/internal/imgfsd"
)

func main() {
	flags := flag.NewFlagSet("imgfs-server", flag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "YAML config file")
	listen := flags.String("listen", "", "override listen address")
	container := flags.String("container", "", "override container path")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	cfg, err := imgfsd.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *listen != "" {
		cfg.Listen = *listen
	}

	if *container != "" {
		cfg.Container = *container
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	os.Exit(imgfsd.Run(cfg, os.Stderr, sigCh))
}
