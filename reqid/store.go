/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package reqid persists the monotonically increasing request counter
// across runs.  Every read and write lands in an append only audit
// log so counter history survives crashes.
package reqid

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/renameio"
)

// Store holds the counter file and its audit log
type Store struct {
	path  string
	audit string
	lk    *flock.Flock
}

// NewStore builds a store over the counter file; audit may be empty to
// disable the log
func NewStore(path, audit string) *Store {
	return &Store{
		path:  path,
		audit: audit,
		lk:    flock.New(path + `.lock`),
	}
}

// Lock takes the cross process lock guarding a get/put cycle
func (s *Store) Lock() error {
	return s.lk.Lock()
}

// Unlock releases the cross process lock
func (s *Store) Unlock() error {
	return s.lk.Unlock()
}

// Get returns the persisted counter, -1 when the file does not exist
func (s *Store) Get() (int64, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.auditf("Read: -1\n")
			return -1, nil
		}
		return -1, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return -1, fmt.Errorf("counter file is garbled: %w", err)
	}
	s.auditf("Read: %d\n", n)
	return n, nil
}

// Put overwrites the counter atomically
func (s *Store) Put(n int64) error {
	if err := renameio.WriteFile(s.path, []byte(strconv.FormatInt(n, 10)), 0644); err != nil {
		return err
	}
	s.auditf("Wrote: %d\n", n)
	return nil
}

func (s *Store) auditf(f string, args ...interface{}) {
	if s.audit == `` {
		return
	}
	fout, err := os.OpenFile(s.audit, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return //the audit log is best effort
	}
	fmt.Fprintf(fout, f, args...)
	fout.Close()
}
