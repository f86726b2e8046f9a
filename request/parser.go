/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivh/vald-ems/atmos"
	"github.com/ivh/vald-ems/config"
	"github.com/ivh/vald-ems/script"
)

const (
	// MaxSubject bounds the request subject embedded in the reply
	MaxSubject = 68

	mailSection      = `--==MailSection==`
	mailSectionClose = `--==MailSection==--`
	//the historic format pipeline closes its section with a stray
	//extra equals sign, downstream tooling knows it by now
	mailSectionCloseFmt = `--===MailSection==--`
)

var (
	ErrNoRequestFile   = errors.New("request file is missing")
	ErrCannotCreateJob = errors.New("cannot create job file")
	ErrNoBeginRequest  = errors.New("no begin request statement")
	ErrUnknownType     = errors.New("cannot recognise request type")
	ErrGrammar         = errors.New("request grammar error")
)

type parser struct {
	cfg     *config.CfgType
	workdir string
	number  int64
	client  string //client name with any _local marker stripped
	cfgName string //personal configuration file name
	opts    *Options
	job     *script.Script
	result  string //result.NNNNNN, the reply body under construction
	scn     *bufio.Scanner
}

// RequestNumber extracts the request number from a request file name
func RequestNumber(reqName string) int64 {
	n, err := strconv.ParseInt(strings.TrimPrefix(filepath.Base(reqName), `request.`), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseFile parses one request file and writes the job.NNNNNN script
// driving the selection programs next to it.  The client argument is
// the registry resolved name, possibly carrying the _local marker.
func ParseFile(cfg *config.CfgType, workdir, reqName, client string) error {
	fin, err := os.Open(filepath.Join(workdir, reqName))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoRequestFile, err)
	}
	defer fin.Close()

	number := RequestNumber(reqName)
	jobPath := filepath.Join(workdir, fmt.Sprintf("job.%06d", number))
	fo, err := os.OpenFile(jobPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCreateJob, err)
	}

	p := &parser{
		cfg:     cfg,
		workdir: workdir,
		number:  number,
		client:  strings.TrimSuffix(client, `_local`),
		cfgName: config.PersonalConfigName(client),
		opts:    NewOptions(),
		job:     script.New(),
		result:  fmt.Sprintf("result.%06d", number),
		scn:     bufio.NewScanner(fin),
	}
	perr := p.run(reqName)
	if _, werr := p.job.WriteTo(fo); werr != nil {
		fo.Close()
		return werr
	}
	if werr := fo.Close(); werr != nil {
		return werr
	}
	return perr
}

func (p *parser) run(reqName string) error {
	p.job.Add(script.Shebang{})

	subject := `Subject: Re: `
	found := false
	for p.scn.Scan() {
		s := p.scn.Text()
		if len(s) > 9 && strings.EqualFold(s[:9], `subject: `) {
			subject = `Subject: Re: ` + clip(RemoveMeta(s)[9:], MaxSubject)
		}
		s1 := strings.ToLower(CompressLine(s, MaxLine))
		if strings.HasPrefix(s1, `beginrequest`) {
			found = true
			break
		}
	}
	if !found {
		p.job.Add(script.Echo{Text: subject, Quote: script.QuoteDouble, Target: p.result, Trunc: true})
		p.job.Echof(p.result, `Syntax error`)
		p.job.Add(script.Echo{Text: `FAILED: No begin request statement`, Quote: script.QuoteDouble, Target: p.result})
		return ErrNoBeginRequest
	}

	p.job.Add(script.Echo{Text: subject, Quote: script.QuoteDouble, Target: p.result, Trunc: true})
	p.job.Echof(p.result, `Mime-Version: 1.0`)
	p.job.Add(script.Echo{Text: `Content-Type: multipart/mixed; boundary="==MailSection=="`, Quote: script.QuoteSingle, Target: p.result})
	p.job.Add(script.Echo{Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Echo{Text: mailSection, Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Echo{Text: `Content-Type: text/plain; charset="us-ascii"`, Quote: script.QuoteSingle, Target: p.result})
	p.job.Add(script.Echo{Quote: script.QuoteDouble, Target: p.result})
	p.job.Echof(p.result, `============= job.%06d =============`, p.number)
	p.job.Add(script.Run{
		Cmd:    script.Cmd{Argv: []string{p.prog(p.cfg.Programs.Type_Request), reqName}, Wrap: true},
		Target: p.result,
	})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`touch`, `err.log`}}})

	//request type is the next recognisable line
	var perr error
	switch p.readType() {
	case `showline`:
		perr = p.showLine()
		p.statf(`ShowLine`)
	case `extractall`:
		perr = p.extractAll()
		p.statf(`ExtractAll`)
	case `extractelement`:
		perr = p.extractElement()
		//the historic statistics log spells it this way
		p.statf(`ExtactElement`)
	case `extractstellar`:
		perr = p.extractStellar()
		p.statf(`ExtractStellar`)
	default:
		p.job.Echof(p.result, `FAILED: Cannot recognise request type`)
		return ErrUnknownType
	}
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`cat`, `err.log`}}, Target: p.result})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, `err.log`}}})
	return perr
}

func (p *parser) readType() string {
	for p.scn.Scan() {
		s1 := strings.ToLower(CompressLine(p.scn.Text(), MaxLine))
		for _, t := range []string{`showline`, `extractall`, `extractelement`, `extractstellar`} {
			if strings.HasPrefix(s1, t) {
				return t
			}
		}
	}
	return ``
}

// statf appends the per request statistics record
func (p *parser) statf(kind string) {
	p.job.Add(script.Echo{
		Text:   fmt.Sprintf("%d %s %s", p.number, kind, p.client),
		Quote:  script.QuoteDouble,
		Target: p.cfg.StatisticsPath(),
	})
}

func (p *parser) prog(name string) string {
	return p.cfg.ProgPath(name)
}

// configPath is the configuration file the selection programs read,
// the personal one when selected
func (p *parser) configPath() string {
	if p.opts.PersonalConfig {
		return filepath.Join(p.cfg.PersonalConfigDir(), p.cfgName)
	}
	return p.cfg.DefaultConfigPath()
}

func (p *parser) lineCap() int {
	if p.opts.FTPRetrieval {
		return p.cfg.Global.Max_Lines_Per_FTP
	}
	return p.cfg.Global.Max_Lines_Per_Request
}

// keyword applies any keyword held in the compressed token and reports
// what remains
func (p *parser) keyword(s1 string) string {
	rest, ev := p.opts.SetKeyword(s1)
	if ev == EvPersonalConfig {
		p.ensurePersonalConfig()
	}
	return rest
}

// ensurePersonalConfig makes sure the client configuration file exists
// by templating it from the default configuration
func (p *parser) ensurePersonalConfig() {
	dst := filepath.Join(p.cfg.PersonalConfigDir(), p.cfgName)
	if _, err := os.Stat(dst); err == nil {
		return
	}
	fin, err := os.Open(p.cfg.DefaultConfigPath())
	if err != nil {
		p.personalConfigError()
		return
	}
	defer fin.Close()
	fout, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		p.personalConfigError()
		return
	}
	if _, err = io.Copy(fout, fin); err != nil {
		fout.Close()
		p.personalConfigError()
		return
	}
	if err = fout.Close(); err != nil {
		p.personalConfigError()
		return
	}
	p.job.Echof(p.result, `Configuration file %s has been created`, p.cfgName)
}

func (p *parser) personalConfigError() {
	p.job.Echof(p.result, `ERROR: Wrong path to personal configuration`)
	p.job.Echof(p.result, `       Contact VALD administrator`)
	p.opts.PersonalConfig = false
}

// parsePair reads two comma separated numbers from a compressed token
func parsePair(s string) (a, b float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return
	}
	var err error
	if a, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return
	}
	if b, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return
	}
	ok = true
	return
}

func (p *parser) writeWorkFile(name, content string) error {
	return os.WriteFile(filepath.Join(p.workdir, name), []byte(content), 0644)
}

// fnum renders a wavelength the shortest way, the style the selection
// program inputs use
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// readRange consumes lines until a wavelength range parses.  The
// failure channel distinguishes unknown-option handling per request
// type: warnings continue, failures do too, only a malformed numeric
// block stops.
func (p *parser) readRange(optionBanner string) (wl1, wl2 float64, err error) {
	for p.scn.Scan() {
		s1 := p.keyword(CompressLine(p.scn.Text(), MaxLine))
		if s1 == `` {
			continue
		}
		if !numericLead(s1) {
			p.job.Echof(p.result, optionBanner, s1)
			continue
		}
		var ok bool
		if wl1, wl2, ok = parsePair(s1); !ok {
			p.job.Echof(p.result, `FAILURE: Cannot read wavelength range`)
			err = ErrGrammar
			return
		}
		if wl1 > wl2 || wl1 <= 0 {
			p.job.Echof(p.result, `FAILURE: Bad wavelength range`)
			err = ErrGrammar
			return
		}
		return
	}
	p.job.Echof(p.result, `FAILURE: Cannot read wavelength range`)
	err = ErrGrammar
	return
}

// presHeader renders the wavelength range and line cap block opening a
// preselect input file
func (p *parser) presHeader(wl1, wl2 float64) string {
	return fmt.Sprintf("%s,%s\n%d\n", fnum(wl1), fnum(wl2), p.lineCap())
}

// presConfigBlock renders the quoted configuration path and the flag
// vector closing a preselect input file
func (p *parser) presConfigBlock() string {
	return fmt.Sprintf("'%s'\n%s\n", p.configPath(), p.opts.FlagVector())
}

// extractPipeline emits the preselect pipeline for the extract
// requests.  With FTP retrieval the formatted output lands in the drop
// file, otherwise it is appended to the reply.
func (p *parser) extractPipeline(presIn string) {
	stages := []script.Cmd{
		{Argv: []string{p.prog(p.cfg.Programs.Preselect)}, Stdin: presIn},
		{Argv: []string{p.prog(p.cfg.Programs.Format)}},
	}
	bib := config.PresformatBibFile
	if p.opts.HFSSplitting {
		stages = []script.Cmd{
			stages[0], stages[1],
			{Argv: []string{p.prog(p.cfg.Programs.Hfs_Split)}},
			{Argv: []string{p.prog(p.cfg.Programs.Post_Hfs_Format)}},
		}
		bib = config.PostHfsBibFile
	}
	if p.opts.FTPRetrieval {
		drop := fmt.Sprintf("%s.%06d", p.client, p.number)
		p.job.Add(script.Pipeline{Stages: stages, Target: drop, Trunc: true, ErrLog: `err.log`})
		p.ftpPackage(drop, bib)
	} else {
		p.job.Add(script.Pipeline{Stages: stages, Target: p.result, ErrLog: `err.log`})
		p.job.Add(script.Echo{Text: mailSection, Quote: script.QuoteDouble, Target: p.result})
		p.inlineBib(bib, mailSectionCloseFmt)
	}
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, presIn}}})
}

// ftpPackage gzips the drop file and the bibliography into the FTP
// directory and tells the client where to fetch them
func (p *parser) ftpPackage(drop, bibSrc string) {
	ftpDir := p.cfg.Global.FTP_Dir
	bib := drop + `.bib`
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`gzip`, drop}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`mv`, drop + `.gz`, ftpDir}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`chmod`, `a+r`, ftpDir + `/` + drop + `.gz`}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`mv`, bibSrc, bib}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`gzip`, bib}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`mv`, bib + `.gz`, ftpDir}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`chmod`, `a+r`, ftpDir + `/` + bib + `.gz`}}})
	p.job.Echof(p.result, `VALD processed your request number %d`, p.number)
	p.job.Echof(p.result, `Results can be retrieved with a Web browser at`)
	p.job.Echof(p.result, `%s/%s.gz`, p.cfg.Global.FTP_URL, drop)
	p.job.Echof(p.result, `%s/%s.gz`, p.cfg.Global.FTP_URL, bib)
	p.job.Echof(p.result, `This link will be valid for 48 hours only`)
}

// inlineBib attaches the gzipped bibliography to the reply as a base64
// MIME part
func (p *parser) inlineBib(bibSrc, closeBoundary string) {
	bib := fmt.Sprintf("%s.%06d.bib", p.client, p.number)
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`mv`, bibSrc, bib}}})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`gzip`, bib}}})
	p.job.Add(script.Echo{
		Text:   fmt.Sprintf("Content-Disposition: attachment; filename=%s.gz;", bib),
		Quote:  script.QuoteDouble,
		Target: p.result,
	})
	p.job.Add(script.Echo{Text: `Content-Type: application/octet-stream`, Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Echo{Text: `Content-Transfer-Encoding: base64`, Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Echo{Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Run{
		Cmd:    script.Cmd{Argv: []string{p.cfg.Global.Base64, bib + `.gz`}},
		Target: p.result,
	})
	p.job.Add(script.Echo{Text: closeBoundary, Quote: script.QuoteDouble, Target: p.result})
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, bib + `.gz`}}})
}

func (p *parser) extractAll() error {
	presIn := fmt.Sprintf("pres_in.%06d", p.number)
	wl1, wl2, err := p.readRange(`WARNING: Unknown option: %s (ignored)`)
	if err != nil {
		p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, presIn}}})
		return err
	}
	content := p.presHeader(wl1, wl2) + "\n" + p.presConfigBlock()
	if err = p.writeWorkFile(presIn, content); err != nil {
		p.job.Echof(p.result, `FAILURE: Cannot write selection input`)
		return err
	}
	p.extractPipeline(presIn)
	return nil
}

func (p *parser) extractElement() error {
	presIn := fmt.Sprintf("pres_in.%06d", p.number)
	wl1, wl2, err := p.readRange(`WARNING: Unknown option: %s (ignored)`)
	if err != nil {
		return err
	}

	for p.scn.Scan() {
		raw := p.scn.Text()
		if strings.HasPrefix(strings.ToLower(CompressLine(raw, MaxLine)), `endrequest`) {
			break
		}
		if p.keyword(CompressLine(raw, MaxLine)) == `` {
			continue //keyword or empty line
		}
		sp := CompressSpecies(raw)
		if sp == `` {
			continue
		}
		content := p.presHeader(wl1, wl2) + sp + "\n" + p.presConfigBlock()
		if err = p.writeWorkFile(presIn, content); err != nil {
			p.job.Echof(p.result, `FAILURE: Cannot write selection input`)
			return err
		}
		p.extractPipeline(presIn)
		return nil
	}
	p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, presIn}}})
	p.job.Echof(p.result, `FAILURE: Element name is missing`)
	return ErrGrammar
}

func (p *parser) extractStellar() error {
	presIn := fmt.Sprintf("pres_in.%06d", p.number)
	wl1, wl2, err := p.readRange(`FAILURE: Unknown option: %s`)
	if err != nil {
		p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, presIn}}})
		return err
	}
	content := fmt.Sprintf("%s,%s\n0\n\n%s", fnum(wl1), fnum(wl2), p.presConfigBlock())
	if err = p.writeWorkFile(presIn, content); err != nil {
		p.job.Echof(p.result, `FAILURE: Cannot write selection input`)
		return err
	}
	rmPres := script.Run{Cmd: script.Cmd{Argv: []string{`rm`, presIn}}}

	//selection criterion and microturbulence
	var criter, vmicro float64
	okPair := false
	for p.scn.Scan() {
		s1 := p.keyword(CompressLine(p.scn.Text(), MaxLine))
		if s1 == `` {
			continue
		}
		if !numericLead(s1) {
			p.job.Echof(p.result, `FAILURE: Unknown option: %s`, s1)
			continue
		}
		if criter, vmicro, okPair = parsePair(s1); !okPair {
			break
		}
		break
	}
	if !okPair {
		p.job.Echof(p.result, `FAILURE: Cannot read criterion and Vmicro`)
		p.job.Add(rmPres)
		return ErrGrammar
	}
	var sel strings.Builder
	fmt.Fprintf(&sel, "%s,%s,%s,%s\n", fnum(wl1), fnum(wl2), fnum(criter), fnum(vmicro))

	//effective temperature and gravity, rounded to the model grid
	var teff, grav float64
	okPair = false
	for p.scn.Scan() {
		s1 := p.keyword(CompressLine(p.scn.Text(), MaxLine))
		if s1 == `` {
			continue
		}
		if !numericLead(s1) {
			p.job.Echof(p.result, `FAILURE: Unknown option: %s`, s1)
			continue
		}
		if teff, grav, okPair = parsePair(s1); !okPair {
			break
		}
		break
	}
	if !okPair {
		p.job.Echof(p.result, `FAILURE: Cannot read Teff and gravity`)
		p.job.Add(rmPres)
		return ErrGrammar
	}
	iteff, logg := atmos.RoundToGrid(teff, grav)
	model := atmos.ModelName(iteff, logg)
	best, err := atmos.FindNearest(p.cfg.ModelsDir(), iteff, logg)
	if err != nil || best == `` {
		p.job.Echof(p.result, `FAILURE: VALD could not find any atmosphere model`)
		p.job.Add(rmPres)
		return ErrGrammar
	}
	if best != model {
		p.job.Echof(p.result, `WARNING: VALD does not have the exact model, will use %s instead`, best)
	}
	fmt.Fprintf(&sel, "'%s'\n", filepath.Join(p.cfg.ModelsDir(), best))

	//abundances close the request
	var aw abundWriter
	for p.scn.Scan() {
		s1 := p.keyword(CompressLine(p.scn.Text(), MaxAbundLine))
		if s1 == `` {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(s1), `ENDREQUEST`) {
			break
		}
		for _, tok := range ParseAbundances(s1) {
			if tok.Unknown {
				p.job.Echof(p.result, `WARNING: Never heard of element: %s`, tok.Raw)
				continue
			}
			aw.add(tok.Out)
		}
	}
	sel.WriteString(aw.finish())
	sel.WriteString("'Synth'\n'select.out'\n")
	fmt.Fprintf(&sel, "%d\n", p.lineCap())
	if err = p.writeWorkFile(`select.input`, sel.String()); err != nil {
		p.job.Echof(p.result, `FAILURE: Cannot write selection input`)
		return err
	}

	stages := []script.Cmd{
		{Argv: []string{p.prog(p.cfg.Programs.Preselect)}, Stdin: presIn},
		{Argv: []string{p.prog(p.cfg.Programs.Select)}},
	}
	bib := config.SelectBibFile
	if p.opts.HFSSplitting {
		stages = []script.Cmd{
			stages[0], stages[1],
			{Argv: []string{p.prog(p.cfg.Programs.Hfs_Split)}},
			{Argv: []string{p.prog(p.cfg.Programs.Post_Hfs_Format)}},
		}
		bib = config.PostHfsBibFile
	}
	p.job.Add(script.Pipeline{Stages: stages, Target: p.result, ErrLog: `err.log`})
	if p.opts.FTPRetrieval {
		drop := fmt.Sprintf("%s.%06d", p.client, p.number)
		p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`mv`, `select.out`, drop}}})
		p.job.Add(rmPres)
		p.ftpPackage(drop, bib)
	} else {
		p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`cat`, `select.out`}}, Target: p.result})
		p.job.Add(script.Echo{Text: mailSection, Quote: script.QuoteDouble, Target: p.result})
		p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, `select.out`, presIn}}})
		p.inlineBib(bib, mailSectionClose)
	}
	return nil
}

func (p *parser) showLine() error {
	const rule = ` ===============================================================================`
	for ishow := 0; ; ishow++ {
		p.job.Add(script.Echo{Text: rule, Target: p.result})
		showIn := fmt.Sprintf("show_in.%06d_%03d", p.number, ishow)

		//central wavelength and scan window
		var center, window float64
		sawLine, okPair := false, false
		for p.scn.Scan() {
			sawLine = true
			s1 := p.keyword(CompressLine(p.scn.Text(), MaxLine))
			if strings.HasPrefix(strings.ToLower(s1), `endrequest`) {
				return nil
			}
			if s1 == `` {
				continue
			}
			if !numericLead(s1) {
				p.job.Echof(p.result, `WARNING: Unknown option: %s (ignored)`, s1)
				continue
			}
			center, window, okPair = parsePair(s1)
			break
		}
		if !sawLine {
			return nil //request body exhausted
		}
		if !okPair {
			p.job.Echof(p.result, `WARNING: Cannot read central wavelength and scan window (entry ignored)`)
			continue
		}

		//one species line drives the block
		hasElem := false
		for p.scn.Scan() {
			raw := p.scn.Text()
			if strings.HasPrefix(strings.ToLower(CompressLine(raw, MaxLine)), `endrequest`) {
				return nil
			}
			if p.keyword(CompressLine(raw, MaxLine)) == `` {
				continue
			}
			sp := CompressSpecies(raw)
			if sp == `` {
				continue
			}
			hasElem = true
			content := fmt.Sprintf("%s,%s\n%s\n%s\n", fnum(center), fnum(window), sp, p.configPath())
			if err := p.writeWorkFile(showIn, content); err != nil {
				p.job.Echof(p.result, `FAILURE: Cannot write selection input`)
				return err
			}
			show := script.Cmd{Argv: []string{p.prog(p.cfg.Programs.Showline)}, Stdin: showIn}
			if p.opts.IsotopicScaling {
				if p.opts.HFSSplitting {
					show.Argv = append(show.Argv, `-HFS`)
				}
				show.Wrap = true
			} else {
				show.Argv = append(show.Argv, `-noisotopic`)
			}
			p.job.Add(script.Pipeline{
				Stages: []script.Cmd{
					show,
					{Argv: []string{p.prog(p.cfg.Programs.Swallow), `10`}, Wrap: true},
				},
				Target: p.result,
				ErrLog: `err.log`,
			})
			p.job.Add(script.Run{Cmd: script.Cmd{Argv: []string{`rm`, showIn}}})
			break
		}
		if !hasElem {
			p.job.Echof(p.result, `WARNING: Element name is missing (ignored)`)
		}
		p.job.Add(script.Echo{Text: mailSection, Quote: script.QuoteDouble, Target: p.result})
	}
}
