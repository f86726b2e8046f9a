/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ivh/vald-ems/backend"
	"github.com/ivh/vald-ems/config"
	"github.com/ivh/vald-ems/log"
)

const defaultConfigPath = `/etc/valdems.conf`

var (
	confLoc = flag.String("config", ``, "Path to the configuration file")
	workdir = flag.String("workdir", `.`, "Directory the request and job files land in")
	verbose = flag.Bool("verbose", false, "Log to stderr as well")
)

func main() {
	flag.Parse()
	cfgPath := *confLoc
	if cfgPath == `` {
		if cfgPath = os.Getenv(`VALDEMS_CONFIG`); cfgPath == `` {
			cfgPath = defaultConfigPath
		}
	}
	cfg, err := config.LoadConfigFile(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}
	lg, err := log.NewFile(cfg.ServerLogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log %s: %v\n", cfg.ServerLogPath(), err)
		os.Exit(1)
	}
	defer lg.Close()
	if err = lg.SetLevelString(cfg.Global.Log_Level); err != nil {
		lg.Fatalf("Invalid log level %q: %v", cfg.Global.Log_Level, err)
	}
	if *verbose {
		lg.AddWriter(os.Stderr)
	}

	if err = backend.ProcessMailbox(cfg, *workdir, lg); err != nil {
		lg.FatalfCode(1, "Failed to process mailbox: %v", err)
	}
}
