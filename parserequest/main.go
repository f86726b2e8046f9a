/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ivh/vald-ems/config"
	"github.com/ivh/vald-ems/request"
)

// historic exit codes the process script distinguishes
const (
	exitNoRequestFile = 4
	exitNoJobFile     = 8
)

var (
	confLoc = flag.String("config", ``, "Path to the configuration file")
	workdir = flag.String("workdir", `.`, "Directory the request and job files live in")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Println("Usage: parserequest <request_file> <user.name>")
		return
	}
	cfgPath := *confLoc
	if cfgPath == `` {
		if cfgPath = os.Getenv(`VALDEMS_CONFIG`); cfgPath == `` {
			cfgPath = `/etc/valdems.conf`
		}
	}
	cfg, err := config.LoadConfigFile(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	err = request.ParseFile(cfg, *workdir, args[0], args[1])
	switch {
	case err == nil:
	case errors.Is(err, request.ErrNoRequestFile):
		os.Exit(exitNoRequestFile)
	case errors.Is(err, request.ErrCannotCreateJob):
		os.Exit(exitNoJobFile)
	default:
		fmt.Fprintf(os.Stderr, "Request %s failed: %v\n", args[0], err)
		os.Exit(1)
	}
}
