/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package backend wires the mailbox splitter, the client registers,
// and the request counter into the process script that runs each
// committed request.
package backend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivh/vald-ems/config"
	"github.com/ivh/vald-ems/log"
	"github.com/ivh/vald-ems/mailbox"
	"github.com/ivh/vald-ems/registry"
	"github.com/ivh/vald-ems/reqid"
	"github.com/ivh/vald-ems/script"
)

const (
	// ProcessScriptName is the driver script parsemail leaves behind
	ProcessScriptName = `process`

	// mirror request logs keep only the message head
	mirrorLogLines = 20
)

// ProcessMailbox splits the incoming mailbox into request files and
// writes the process script that parses and runs each of them.  The
// request counter advances by exactly the number of committed
// requests.
func ProcessMailbox(cfg *config.CfgType, workdir string, lg *log.Logger) error {
	procPath := filepath.Join(workdir, ProcessScriptName)
	proc, err := os.OpenFile(procPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer proc.Close()

	fin, err := os.Open(cfg.MailPath())
	if err != nil {
		if os.IsNotExist(err) {
			lg.Infof("no mail at %s, nothing to do", cfg.MailPath())
			return nil //an empty process script is the no-mail signal
		}
		return err
	}
	defer fin.Close()

	auth, err := registry.NewAuthenticator(cfg.GlobalRegisterPath(), cfg.LocalRegisterPath())
	if err != nil {
		return fmt.Errorf("client registers: %w", err)
	}

	ids := reqid.NewStore(cfg.LastRequestPath(), cfg.RequestIDLogPath())
	if err = ids.Lock(); err != nil {
		return err
	}
	defer ids.Unlock()
	n, err := ids.Get()
	if err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	lg.Infof("last submitted request: %d", n)

	//drain the whole mailbox first, the final request's job line
	//carries an extra error trap
	var msgs []*mailbox.Message
	sp := mailbox.NewSplitter(fin)
	for {
		m, serr := sp.Next()
		if errors.Is(serr, io.EOF) {
			break
		}
		if serr != nil {
			return serr
		}
		msgs = append(msgs, m)
	}

	sc := script.New()
	sc.Add(script.Shebang{})
	sc.Add(script.SetVar{Name: `ERROR_STATE`, Value: `0`})

	committed := 0
	for i, m := range msgs {
		n++
		filename := fmt.Sprintf("request.%06d", n)
		if err = writeRequestFile(filepath.Join(workdir, filename), m.Lines); err != nil {
			return err
		}
		client, ok := auth.Authenticate(m.Address)
		if m.Address == `` || !ok {
			lg.Warnf("dropping request from unregistered sender %q", m.Address)
			os.Remove(filepath.Join(workdir, filename))
			n--
			continue
		}
		if !m.HasBeginRequest {
			lg.Warnf("dropping request %s from %s: no begin request", filename, m.Address)
			os.Remove(filepath.Join(workdir, filename))
			n--
			continue
		}
		emitRequestBlock(sc, cfg, m, filename, client, n, i == len(msgs)-1)
		committed++
	}
	sc.Add(script.ExitVar{Name: `ERROR_STATE`})
	if _, err = sc.WriteTo(proc); err != nil {
		return err
	}
	lg.Infof("committed %d of %d messages, counter now %d", committed, len(msgs), n)
	return ids.Put(n)
}

func writeRequestFile(p string, lines []string) error {
	var sb strings.Builder
	for _, ln := range lines {
		sb.WriteString(ln)
		sb.WriteByte('\n')
	}
	return os.WriteFile(p, []byte(sb.String()), 0644)
}

// emitRequestBlock appends one request's section of the process
// script: parse, run the job, log, reply.
func emitRequestBlock(sc *script.Script, cfg *config.CfgType, m *mailbox.Message,
	filename, client string, n int64, last bool) {
	job := fmt.Sprintf("job.%06d", n)
	result := fmt.Sprintf("result.%06d", n)
	isMirror := strings.TrimSuffix(client, registry.LocalSuffix) == registry.MirrorClient

	sc.Add(script.Banner{Name: filename})
	sc.Add(script.Echo{
		Text:   fmt.Sprintf("============= %s ============", filename),
		Target: cfg.RequestsLogPath(),
	})
	sc.Add(script.Run{
		Cmd:  script.Cmd{Argv: []string{cfg.ProgPath(cfg.Programs.Parserequest), filename, client}},
		Trap: fmt.Sprintf("parserequest failed for request %d", n),
	})
	sc.Add(script.Run{Cmd: script.Cmd{Argv: []string{`chmod`, `u+x`, job}}})
	run := script.Run{Cmd: script.Cmd{Argv: []string{`./` + job}}}
	if last {
		run.Trap = fmt.Sprintf("job failed for request %d", n)
	}
	sc.Add(run)
	sc.Add(script.Run{Cmd: script.Cmd{Argv: []string{`cat`, job}}, Target: cfg.JobsLogPath()})
	if !isMirror || m.HasBeginRequest {
		sc.Add(script.Run{
			Cmd:  script.Cmd{Argv: []string{cfg.Global.Sendmail, m.Address}, Stdin: result},
			Trap: fmt.Sprintf("sendmail failed for request %d", n),
		})
	}
	if isMirror {
		sc.Add(script.Run{
			Cmd:    script.Cmd{Argv: []string{`head`, fmt.Sprintf("-%d", mirrorLogLines), filename}},
			Target: cfg.RequestsLogPath(),
		})
	} else {
		sc.Add(script.Run{
			Cmd:    script.Cmd{Argv: []string{`cat`, filename}},
			Target: cfg.RequestsLogPath(),
		})
	}
}
