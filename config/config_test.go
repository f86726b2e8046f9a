/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"errors"
	"testing"
)

func TestLoadConfigBytes(t *testing.T) {
	b := []byte(`
[global]
VALD-Home=/srv/vald
Mail-File=incoming.mail
Site-Name=uppsala
Max-Lines-Per-Request=2000

[programs]
Preselect=bin/preselect3
`)
	c, err := LoadConfigBytes(b)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.MailPath() != `/srv/vald/incoming.mail` {
		t.Fatalf("mail path %s", c.MailPath())
	}
	if c.StatisticsPath() != `/srv/vald/LOGS/uppsala_statistics.log` {
		t.Fatalf("statistics path %s", c.StatisticsPath())
	}
	if c.Global.Max_Lines_Per_Request != 2000 {
		t.Fatalf("line cap %d", c.Global.Max_Lines_Per_Request)
	}
	if c.Global.Max_Lines_Per_FTP != defaultMaxLinesPerFTP {
		t.Fatalf("ftp cap %d", c.Global.Max_Lines_Per_FTP)
	}
	if c.ProgPath(c.Programs.Preselect) != `/srv/vald/bin/preselect3` {
		t.Fatalf("preselect %s", c.ProgPath(c.Programs.Preselect))
	}
}

func TestLoadConfigMissingHome(t *testing.T) {
	if _, err := LoadConfigBytes([]byte("[global]\nSite-Name=x\n")); !errors.Is(err, ErrNoValdHome) {
		t.Fatalf("expected ErrNoValdHome, got %v", err)
	}
}

func TestPersonalConfigName(t *testing.T) {
	tests := [][2]string{
		{`Piskunov`, `Piskunov.cfg`},
		{`Piskunov_local`, `Piskunov.cfg_local`},
		{`_local`, `_local.cfg`},
	}
	for _, tc := range tests {
		if got := PersonalConfigName(tc[0]); got != tc[1] {
			t.Fatalf("%s -> %s, want %s", tc[0], got, tc[1])
		}
	}
}
