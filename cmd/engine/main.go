// Command engine boots the renderer job scheduler described by
// internal/engineconfig, runs it to completion, and tears it down. Exit
// codes mirror spec.md §6: 0 success, 1 initialization failure, 2 teardown
// failure.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/profile"

	"github.com/nova-engine/jobrt/internal/engine"
	"github.com/nova-engine/jobrt/internal/engineconfig"
	"github.com/nova-engine/jobrt/internal/enginelog"
	"github.com/nova-engine/jobrt/internal/schedmetrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuProfile := flag.Bool("cpuprofile", false, "enable CPU profiling for this run")
	memProfile := flag.Bool("memprofile", false, "enable heap profiling for this run")
	flag.Parse()

	switch {
	case *cpuProfile:
		defer profile.Start(profile.CPUProfile).Stop()
	case *memProfile:
		defer profile.Start(profile.MemProfile).Stop()
	}

	configPath := engineconfig.DefaultPath
	var cfg *engineconfig.Config
	if flag.NArg() >= 1 {
		configPath = flag.Arg(0)
		loaded, err := engineconfig.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "engine: %v\n", err)
			return 1
		}
		cfg = loaded
	} else {
		cfg = engineconfig.LoadOrDefault(configPath)
	}

	log, err := enginelog.New(enginelog.Config{
		Level:   cfg.Logging.Level,
		Dir:     cfg.Logging.Dir,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: logger init failed: %v\n", err)
		return 1
	}
	defer log.Close()

	log.Info("starting", "name", cfg.Name, "config", configPath)

	e := engine.New(cfg, log, nil)

	if cfg.Metrics.Enabled {
		reg, err := schedmetrics.NewRegistry(e.Scheduler)
		if err != nil {
			log.Error("metrics registry init failed", "err", err)
			return 1
		}
		srv := &http.Server{Addr: cfg.Metrics.Address, Handler: schedmetrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	if err := e.InitSubSystems(nil, nil); err != nil {
		log.Error("initialization failed", "err", err)
		return 1
	}

	e.Run()

	if err := e.Shutdown(); err != nil {
		log.Error("teardown failed", "err", err)
		return 2
	}

	log.Info("stopped cleanly")
	return 0
}
