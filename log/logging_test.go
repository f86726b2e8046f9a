/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package log

import (
	"bytes"
	"strings"
	"testing"
)

type bufCloser struct {
	bytes.Buffer
}

func (bc *bufCloser) Close() error { return nil }

func TestLevels(t *testing.T) {
	var bc bufCloser
	l := New(&bc)
	if err := l.SetLevel(WARN); err != nil {
		t.Fatal(err)
	}
	if err := l.Infof("should not appear %d", 1); err != nil {
		t.Fatal(err)
	}
	if err := l.Warnf("warning %d", 2); err != nil {
		t.Fatal(err)
	}
	out := bc.String()
	if strings.Contains(out, `should not appear`) {
		t.Fatalf("filtered line leaked: %q", out)
	}
	if !strings.Contains(out, `warning 2`) {
		t.Fatalf("warning lost: %q", out)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		s   string
		lvl Level
	}{
		{`off`, OFF}, {`DEBUG`, DEBUG}, {` info `, INFO},
		{`Warn`, WARN}, {`error`, ERROR}, {`CRITICAL`, CRITICAL}, {`fatal`, FATAL},
	}
	for _, tc := range tests {
		lvl, err := LevelFromString(tc.s)
		if err != nil || lvl != tc.lvl {
			t.Fatalf("%q -> (%v,%v)", tc.s, lvl, err)
		}
	}
	if _, err := LevelFromString(`nope`); err == nil {
		t.Fatal("bad level accepted")
	}
}

func TestCloseRejectsFurtherWrites(t *testing.T) {
	l := NewDiscardLogger()
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Infof("late"); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
}
