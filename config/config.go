/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package config loads the VALD server configuration: the home
// directory layout, retrieval limits, and the downstream programs the
// emitted job scripts invoke.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gravwell/gcfg"
)

const (
	maxConfigSize int64 = 1024 * 1024 //1MB of config is already insane

	defaultMailFile           = `vald.mail`
	defaultLogsDir            = `LOGS`
	defaultConfigFile         = `default.cfg`
	defaultPersonalConfigDir  = `PERSONAL_CONFIG`
	defaultClientsRegister    = `clients.register`
	defaultClientsRegLocal    = `clients.register.local`
	defaultLastRequestFile    = `LAST_SUBMITTED_REQUEST`
	defaultModelsDir          = `MODELS`
	defaultFTPDir             = `/var/ftp/pub/vald`
	defaultFTPURL             = `ftp://vald.invalid/pub/vald`
	defaultSiteName           = `vald`
	defaultSendmail           = `/usr/sbin/sendmail`
	defaultBase64             = `base64`
	defaultMaxLinesPerRequest = 10000
	defaultMaxLinesPerFTP     = 100000
	defaultLogLevel           = `INFO`

	defaultProgPreselect     = `bin/preselect`
	defaultProgFormat        = `bin/presformat`
	defaultProgSelect        = `bin/select`
	defaultProgShowline      = `bin/showline`
	defaultProgSwallow       = `bin/swallow`
	defaultProgHfsSplit      = `bin/hfs_split`
	defaultProgPostHfsFormat = `bin/post_hfs_format`
	defaultProgTypeRequest   = `bin/type_request`
	defaultProgParserequest  = `bin/parserequest`
)

const (
	// PresformatBibFile and friends are the fixed names the downstream
	// programs leave their bibliography output under
	PresformatBibFile = `presformat.bib`
	SelectBibFile     = `select.bib`
	PostHfsBibFile    = `post_hfs.bib`
)

var (
	ErrNoValdHome         = errors.New("VALD-Home is not set")
	ErrConfigFileTooLarge = errors.New("config file is too large")
	ErrBadLineLimits      = errors.New("retrieval line limits are invalid")
)

type cfgGlobal struct {
	VALD_Home              string
	Mail_File              string
	Logs_Dir               string
	Config_File            string
	Personal_Config_Dir    string
	Clients_Register       string
	Clients_Register_Local string
	Last_Request_File      string
	Models_Dir             string
	FTP_Dir                string
	FTP_URL                string
	Site_Name              string
	Sendmail               string
	Base64                 string
	Max_Lines_Per_Request  int
	Max_Lines_Per_FTP      int
	Log_Level              string
}

type cfgPrograms struct {
	Preselect       string
	Format          string
	Select          string
	Showline        string
	Swallow         string
	Hfs_Split       string
	Post_Hfs_Format string
	Type_Request    string
	Parserequest    string
}

type CfgType struct {
	Global   cfgGlobal
	Programs cfgPrograms
}

// LoadConfigFile opens a config file, checks the size, and parses it
func LoadConfigFile(p string) (*CfgType, error) {
	fin, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	fi, err := fin.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() > maxConfigSize {
		return nil, ErrConfigFileTooLarge
	}
	bb := bytes.NewBuffer(nil)
	if _, err = io.Copy(bb, fin); err != nil {
		return nil, err
	}
	return LoadConfigBytes(bb.Bytes())
}

func LoadConfigBytes(b []byte) (*CfgType, error) {
	c := defaultConfig()
	if err := gcfg.ReadStringInto(c, string(b)); err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func defaultConfig() *CfgType {
	return &CfgType{
		Global: cfgGlobal{
			Mail_File:              defaultMailFile,
			Logs_Dir:               defaultLogsDir,
			Config_File:            defaultConfigFile,
			Personal_Config_Dir:    defaultPersonalConfigDir,
			Clients_Register:       defaultClientsRegister,
			Clients_Register_Local: defaultClientsRegLocal,
			Last_Request_File:      defaultLastRequestFile,
			Models_Dir:             defaultModelsDir,
			FTP_Dir:                defaultFTPDir,
			FTP_URL:                defaultFTPURL,
			Site_Name:              defaultSiteName,
			Sendmail:               defaultSendmail,
			Base64:                 defaultBase64,
			Max_Lines_Per_Request:  defaultMaxLinesPerRequest,
			Max_Lines_Per_FTP:      defaultMaxLinesPerFTP,
			Log_Level:              defaultLogLevel,
		},
		Programs: cfgPrograms{
			Preselect:       defaultProgPreselect,
			Format:          defaultProgFormat,
			Select:          defaultProgSelect,
			Showline:        defaultProgShowline,
			Swallow:         defaultProgSwallow,
			Hfs_Split:       defaultProgHfsSplit,
			Post_Hfs_Format: defaultProgPostHfsFormat,
			Type_Request:    defaultProgTypeRequest,
			Parserequest:    defaultProgParserequest,
		},
	}
}

func (c *CfgType) Verify() error {
	if c.Global.VALD_Home == `` {
		return ErrNoValdHome
	}
	if c.Global.Max_Lines_Per_Request <= 0 || c.Global.Max_Lines_Per_FTP <= 0 {
		return ErrBadLineLimits
	}
	return nil
}

// home joins a configured, possibly relative, name onto the VALD home
func (c *CfgType) home(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Global.VALD_Home, name)
}

func (c *CfgType) MailPath() string          { return c.home(c.Global.Mail_File) }
func (c *CfgType) LogsDir() string           { return c.home(c.Global.Logs_Dir) }
func (c *CfgType) DefaultConfigPath() string { return c.home(c.Global.Config_File) }
func (c *CfgType) PersonalConfigDir() string { return c.home(c.Global.Personal_Config_Dir) }
func (c *CfgType) GlobalRegisterPath() string {
	return c.home(c.Global.Clients_Register)
}
func (c *CfgType) LocalRegisterPath() string {
	return c.home(c.Global.Clients_Register_Local)
}
func (c *CfgType) LastRequestPath() string { return c.home(c.Global.Last_Request_File) }
func (c *CfgType) RequestIDLogPath() string {
	return filepath.Join(c.LogsDir(), `reqID.log`)
}
func (c *CfgType) RequestsLogPath() string {
	return filepath.Join(c.LogsDir(), `requests.log`)
}
func (c *CfgType) JobsLogPath() string {
	return filepath.Join(c.LogsDir(), `jobs.log`)
}
func (c *CfgType) ServerLogPath() string {
	return filepath.Join(c.LogsDir(), `ems.log`)
}
func (c *CfgType) StatisticsPath() string {
	return filepath.Join(c.LogsDir(), c.Global.Site_Name+`_statistics.log`)
}
func (c *CfgType) ModelsDir() string { return c.home(c.Global.Models_Dir) }

// PersonalConfigName maps a client name to its config file name, a
// client matched from the local register keeps the _local marker on
// the file extension rather than the name.
func PersonalConfigName(client string) string {
	const localSuffix = `_local`
	if n := len(client) - len(localSuffix); n > 0 && client[n:] == localSuffix {
		return client[:n] + `.cfg` + localSuffix
	}
	return client + `.cfg`
}

// PersonalConfigPath returns the full path of a client config file
func (c *CfgType) PersonalConfigPath(client string) string {
	return filepath.Join(c.PersonalConfigDir(), PersonalConfigName(client))
}

// ProgPath resolves a configured program location against the home
func (c *CfgType) ProgPath(p string) string { return c.home(p) }
