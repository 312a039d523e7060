package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/navgraph/internal/config"
	"github.com/zeusync/navgraph/internal/injector"
)

// navgraph loads a waypoint file, builds its NavMesh and optionally plans a
// path between two waypoint ids.
func main() {
	var (
		configPath = flag.String("config", "", "yaml or json configuration file")
		in         = flag.String("in", "", "waypoint file to load")
		out        = flag.String("out", "", "write the waypoints here after loading")
		from       = flag.Uint("from", 0, "path start id")
		to         = flag.Uint("to", 0, "path goal id")
	)
	flag.Parse()

	if err := run(*configPath, *in, *out, uint32(*from), uint32(*to)); err != nil {
		fmt.Fprintln(os.Stderr, "navgraph:", err)
		os.Exit(1)
	}
}

func run(configPath, in, out string, from, to uint32) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	svc, err := injector.InitializeService(cfg, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if in != "" {
		if _, err := svc.Load(in); err != nil {
			return err
		}
	}

	report, err := svc.Build(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Printf("waypoints=%d edges=%d pairs=%d failures=%d took=%s\n",
		report.Sources, report.EdgesAdded, report.PairsTested, report.Failures, report.Duration)
	if report.OracleErr != nil {
		fmt.Fprintln(os.Stderr, "oracle:", report.OracleErr)
	}

	if from != 0 && to != 0 {
		res, path := svc.FindPath(from, to)
		fmt.Printf("%s %v\n", res, path)
	}

	if out != "" {
		return svc.Save(out)
	}
	return nil
}
