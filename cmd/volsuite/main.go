package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/contactkeval/volsuite/internal/config"
	"github.com/contactkeval/volsuite/internal/data"
	"github.com/contactkeval/volsuite/internal/dispatcher"
	"github.com/contactkeval/volsuite/internal/logger"
	"github.com/contactkeval/volsuite/internal/session"
)

func main() {
	configPath := flag.String("config", "volsuite.yaml", "path to YAML config")
	verbosity := flag.Int("v", 0, "verbosity: 0=error 1=info 2=debug 3=trace")
	ticker := flag.String("ticker", "", "ticker to load at startup, overrides the config default")
	offline := flag.Bool("offline", false, "use the synthetic data provider only")
	seed := flag.Int64("seed", 42, "seed for the synthetic provider")
	dataDir := flag.String("data-dir", "", "directory of local CSV bar files, tried before the network provider")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("loading config: %v", err)
		os.Exit(1)
	}

	// choose provider
	var prov data.Provider = data.NewSyntheticProvider(*seed)
	if !*offline {
		prov = data.NewYahooProvider(prov)
		logger.Infof("yahoo provider enabled with synthetic fallback")
	} else {
		logger.Infof("synthetic provider enabled")
	}
	if *dataDir != "" {
		prov = data.NewLocalCSVProvider(*dataDir, prov)
		logger.Infof("local CSV provider enabled for %s", *dataDir)
	}

	sess := session.New(cfg, *configPath)
	d := dispatcher.New(prov, sess, os.Stdout)

	startupTicker := strings.ToUpper(*ticker)
	if startupTicker == "" {
		startupTicker = cfg.DefaultTicker
	}
	if startupTicker != "" {
		d.Execute(fmt.Sprintf("ticker %s", startupTicker))
	}

	if err := d.Run(os.Stdin); err != nil {
		logger.Errorf("session ended: %v", err)
		os.Exit(1)
	}
}
