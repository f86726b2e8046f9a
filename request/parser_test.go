/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package request

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivh/vald-ems/config"
)

const defaultCfgBody = "lambda_air\nreferences on\n"

func testSetup(t *testing.T) (*config.CfgType, string) {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	for _, d := range []string{`LOGS`, `PERSONAL_CONFIG`, `MODELS`} {
		if err := os.MkdirAll(filepath.Join(home, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(home, `default.cfg`), []byte(defaultCfgBody), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadConfigBytes([]byte("[global]\nVALD-Home=" + home + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg, work
}

func writeRequest(t *testing.T, work, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(work, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func mustContain(t *testing.T, hay, needle string) {
	t.Helper()
	if !strings.Contains(hay, needle) {
		t.Fatalf("missing %q in:\n%s", needle, hay)
	}
}

func TestParseExtractAll(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000001`, `From: someone@obs.edu
Subject: my lines

begin request
extract all
5000,5010
end request
`)
	if err := ParseFile(cfg, work, `request.000001`, `Someone`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	home := cfg.Global.VALD_Home
	job := readFile(t, filepath.Join(work, `job.000001`))
	mustContain(t, job, `#!/bin/csh`)
	mustContain(t, job, `echo "Subject: Re: my lines" > result.000001`)
	mustContain(t, job, `echo 'Content-Type: multipart/mixed; boundary="==MailSection=="' >> result.000001`)
	mustContain(t, job, home+`/bin/preselect < pres_in.000001 | (`+home+`/bin/presformat >> result.000001) >>& err.log`)
	mustContain(t, job, `echo "1 ExtractAll Someone" >> `+home+`/LOGS/vald_statistics.log`)
	mustContain(t, job, `mv `+config.PresformatBibFile+` Someone.000001.bib`)
	mustContain(t, job, `cat err.log >> result.000001`)
	mustContain(t, job, "rm err.log\n")

	presIn := readFile(t, filepath.Join(work, `pres_in.000001`))
	want := "5000,5010\n10000\n\n'" + home + "/default.cfg'\n0 0 0 0 0 0 0 0 0 0 0 1 0\n"
	if presIn != want {
		t.Fatalf("pres_in:\n%q\nwant:\n%q", presIn, want)
	}
}

func TestParseMissingBeginRequest(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000002`, "Subject: oops\n\nextract all\n5000,5010\n")
	err := ParseFile(cfg, work, `request.000002`, `Someone`)
	if !errors.Is(err, ErrNoBeginRequest) {
		t.Fatalf("expected ErrNoBeginRequest, got %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000002`))
	mustContain(t, job, `echo "FAILED: No begin request statement" >> result.000002`)
	mustContain(t, job, `echo "Subject: Re: oops" > result.000002`)
}

func TestParseUnknownType(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000003`, "begin request\nmake me a sandwich\nend request\n")
	if err := ParseFile(cfg, work, `request.000003`, `Someone`); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000003`))
	mustContain(t, job, `echo FAILED: Cannot recognise request type >> result.000003`)
}

func TestParseExtractStellarNearestModel(t *testing.T) {
	cfg, work := testSetup(t)
	models := cfg.ModelsDir()
	for _, m := range []string{`05750g45.krz`, `05500g40.krz`} {
		if err := os.WriteFile(filepath.Join(models, m), []byte(`m`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	writeRequest(t, work, `request.000004`, `begin request
extract stellar
5700., 6700.
0.01, 2.0
5780, 4.4
Sr: -4.67, Cr: -3.37,
end request
`)
	if err := ParseFile(cfg, work, `request.000004`, `Someone`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000004`))
	mustContain(t, job, `WARNING: VALD does not have the exact model, will use 05750g45.krz instead`)
	mustContain(t, job, `/bin/select >> result.000004) >>& err.log`)
	mustContain(t, job, `cat select.out >> result.000004`)
	mustContain(t, job, `rm select.out pres_in.000004`)
	mustContain(t, job, `echo "4 ExtractStellar Someone"`)

	sel := readFile(t, filepath.Join(work, `select.input`))
	want := "5700,6700,0.01,2\n'" + filepath.Join(models, `05750g45.krz`) + "'\n" +
		"'Sr:-4.67','Cr:-3.37','END'\n'Synth'\n'select.out'\n10000\n"
	if sel != want {
		t.Fatalf("select.input:\n%q\nwant:\n%q", sel, want)
	}
}

func TestParseExtractStellarNoModel(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000005`, `begin request
extract stellar
5700., 6700.
0.01, 2.0
5780, 4.4
end request
`)
	if err := ParseFile(cfg, work, `request.000005`, `Someone`); !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000005`))
	mustContain(t, job, `FAILURE: VALD could not find any atmosphere model`)
}

func TestParsePersonalConfigLocalClient(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000006`, `begin request
extract all
personal configuration
5000,5010
end request
`)
	if err := ParseFile(cfg, work, `request.000006`, `Someone_local`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	pc := filepath.Join(cfg.PersonalConfigDir(), `Someone.cfg_local`)
	if got := readFile(t, pc); got != defaultCfgBody {
		t.Fatalf("personal config body %q", got)
	}
	job := readFile(t, filepath.Join(work, `job.000006`))
	mustContain(t, job, `echo Configuration file Someone.cfg_local has been created >> result.000006`)
	//the client name in the statistics drops the _local marker
	mustContain(t, job, `echo "6 ExtractAll Someone"`)

	presIn := readFile(t, filepath.Join(work, `pres_in.000006`))
	mustContain(t, presIn, "'"+pc+"'\n")
}

func TestParseExtractAllViaFTP(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000007`, `begin request
extract all
via ftp
5000,5010
end request
`)
	if err := ParseFile(cfg, work, `request.000007`, `Someone`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000007`))
	mustContain(t, job, ` > Someone.000007) >>& err.log`)
	mustContain(t, job, `gzip Someone.000007`)
	mustContain(t, job, `mv Someone.000007.gz `+cfg.Global.FTP_Dir)
	mustContain(t, job, `chmod a+r `+cfg.Global.FTP_Dir+`/Someone.000007.gz`)
	mustContain(t, job, `echo This link will be valid for 48 hours only >> result.000007`)

	presIn := readFile(t, filepath.Join(work, `pres_in.000007`))
	mustContain(t, presIn, "5000,5010\n100000\n")
}

func TestParseShowLine(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000008`, `begin request
show line
5187.5, 0.05
Fe 2
end request
`)
	if err := ParseFile(cfg, work, `request.000008`, `Someone`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	home := cfg.Global.VALD_Home
	job := readFile(t, filepath.Join(work, `job.000008`))
	mustContain(t, job, `(`+home+`/bin/showline) < show_in.000008_000 | ((`+home+`/bin/swallow 10) >> result.000008) >>& err.log`)
	mustContain(t, job, `rm show_in.000008_000`)
	mustContain(t, job, `echo "8 ShowLine Someone"`)

	showIn := readFile(t, filepath.Join(work, `show_in.000008_000`))
	want := "5187.5,0.05\nFe2\n" + home + "/default.cfg\n"
	if showIn != want {
		t.Fatalf("show_in:\n%q\nwant:\n%q", showIn, want)
	}
}

func TestParseShowLineHFSAndIsotopic(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000009`, `begin request
show line
hfs splitting
5187.5, 0.05
Fe 2
end request
`)
	if err := ParseFile(cfg, work, `request.000009`, `Someone`); err != nil {
		t.Fatal(err)
	}
	job := readFile(t, filepath.Join(work, `job.000009`))
	mustContain(t, job, `/bin/showline -HFS) < show_in.000009_000`)

	writeRequest(t, work, `request.000010`, `begin request
show line
isotopic scaling off
5187.5, 0.05
Fe 2
end request
`)
	if err := ParseFile(cfg, work, `request.000010`, `Someone`); err != nil {
		t.Fatal(err)
	}
	job = readFile(t, filepath.Join(work, `job.000010`))
	mustContain(t, job, `/bin/showline -noisotopic < show_in.000010_000`)
}

func TestParseExtractElement(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000011`, `begin request
extract element
4000, 4100
Ti 2
end request
`)
	if err := ParseFile(cfg, work, `request.000011`, `Someone`); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	presIn := readFile(t, filepath.Join(work, `pres_in.000011`))
	if !strings.HasPrefix(presIn, "4000,4100\n10000\nTi2\n") {
		t.Fatalf("pres_in:\n%q", presIn)
	}
	job := readFile(t, filepath.Join(work, `job.000011`))
	mustContain(t, job, `echo "11 ExtactElement Someone"`)
}

func TestParseExtractElementMissingSpecies(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000012`, "begin request\nextract element\n4000,4100\nend request\n")
	if err := ParseFile(cfg, work, `request.000012`, `Someone`); !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000012`))
	mustContain(t, job, `FAILURE: Element name is missing`)
}

func TestParseBadWavelengthRange(t *testing.T) {
	cfg, work := testSetup(t)
	writeRequest(t, work, `request.000013`, "begin request\nextract all\n6000,5000\nend request\n")
	if err := ParseFile(cfg, work, `request.000013`, `Someone`); !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}
	job := readFile(t, filepath.Join(work, `job.000013`))
	mustContain(t, job, `echo FAILURE: Bad wavelength range >> result.000013`)
}

func TestRequestNumber(t *testing.T) {
	if n := RequestNumber(`request.000042`); n != 42 {
		t.Fatalf("number %d", n)
	}
	if n := RequestNumber(`garbage`); n != 0 {
		t.Fatalf("garbage number %d", n)
	}
}
