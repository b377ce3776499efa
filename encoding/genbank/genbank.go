// Package genbank parses GenBank flat files.  Only the parts needed to draw
// annotation maps are kept: the LOCUS line, DEFINITION, ACCESSION, VERSION,
// the FEATURES table and the ORIGIN sequence.  For example:
//
// LOCUS       pUC19                   2686 bp    DNA     circular SYN
// FEATURES             Location/Qualifiers
//      CDS             complement(1626..2486)
//                      /gene="bla"
// ORIGIN
//         1 tcgcgcgttt cggtgatgac ggtgaaaacc tctgacacat gcagctcccg
// //
//
// Feature locations are converted to 0-based half-open Spans.
package genbank

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

const (
	bufferMaxSize = 1 << 26 // 64 MB; bounds the longest line.

	// featureKeyCol and qualifierCol are the fixed columns of the FEATURES
	// table.
	featureKeyCol = 5
	qualifierCol  = 21
	// headerValueCol is where header keyword values start.
	headerValueCol = 12
)

// Qualifier is one /key=value entry of a feature.  Value is unquoted; it is
// empty for flag qualifiers such as /pseudo.
type Qualifier struct {
	Key, Value string
}

// Qualifiers holds a feature's qualifiers in file order.
type Qualifiers []Qualifier

// Get returns the first value for key.
func (q Qualifiers) Get(key string) (string, bool) {
	for _, e := range q {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// All returns every value for key.
func (q Qualifiers) All(key string) []string {
	var vals []string
	for _, e := range q {
		if e.Key == key {
			vals = append(vals, e.Value)
		}
	}
	return vals
}

// Feature is one entry of the FEATURES table.
type Feature struct {
	// Type is the feature key, e.g. "CDS" or "rep_origin".
	Type       string
	Location   Location
	Qualifiers Qualifiers
}

// Record is one GenBank entry.
type Record struct {
	// Name is the LOCUS name.
	Name string
	// ID is the VERSION accession if present, else the first ACCESSION, else
	// Name.
	ID         string
	Definition string
	// Topology is "circular", "linear", or "" if the LOCUS line omits it.
	Topology string
	// DeclaredLen is the length given on the LOCUS line.
	DeclaredLen int
	// Seq is the upper-cased ORIGIN sequence; it may be empty.
	Seq      string
	Features []Feature
}

// Len returns the sequence length, falling back to the LOCUS length for
// records without an ORIGIN block.
func (r *Record) Len() int {
	if len(r.Seq) > 0 {
		return len(r.Seq)
	}
	return r.DeclaredLen
}

// Circular reports whether the LOCUS line marks the molecule as circular.
func (r *Record) Circular() bool {
	return r.Topology == "circular"
}

type section int

const (
	sectionHeader section = iota
	sectionFeatures
	sectionOrigin
)

// parser holds the state of a streaming parse.  Features are built up in
// (key, location lines, qualifier lines) form and converted on completion.
type parser struct {
	lineIdx int
	rec     *Record
	sec     section
	lastKey string

	featKey   string
	featLoc   strings.Builder
	quals     [][]string // raw lines of each qualifier, "/" stripped
	accession string
	version   string
	seq       strings.Builder
}

// Parse reads every record in r.
func Parse(r io.Reader) ([]*Record, error) {
	var (
		recs []*Record
		p    parser
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferMaxSize)
	for scanner.Scan() {
		p.lineIdx++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if line == "" {
			continue
		}
		if line == "//" {
			if p.rec == nil {
				return nil, errors.Errorf("genbank: line %d: record terminator without LOCUS", p.lineIdx)
			}
			rec, err := p.finish()
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
			continue
		}
		if err := p.line(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read GenBank data")
	}
	if p.rec != nil {
		return nil, errors.Errorf("genbank: record %s is missing its // terminator", p.rec.Name)
	}
	return recs, nil
}

// ReadOne reads r, which must contain exactly one record.
func ReadOne(r io.Reader) (*Record, error) {
	recs, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, errors.Errorf("genbank: expected one record, found %d", len(recs))
	}
	return recs[0], nil
}

// Load reads the single record stored at path.  Compressed files are
// decompressed transparently.
func Load(ctx context.Context, path string) (rec *Record, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if e := infile.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	reader, _ := compress.NewReader(infile.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if rec, err = ReadOne(reader); err != nil {
		err = errors.Wrap(err, path)
	}
	return
}

func (p *parser) line(line string) error {
	if strings.HasPrefix(line, "LOCUS") {
		if p.rec != nil {
			return errors.Errorf("genbank: line %d: LOCUS before // terminator of %s", p.lineIdx, p.rec.Name)
		}
		return p.locus(line)
	}
	if p.rec == nil {
		// Anything before the first LOCUS (e.g. a GenBank release header).
		return nil
	}
	if line[0] != ' ' {
		if err := p.flushFeature(); err != nil {
			return err
		}
		keyword := line
		if i := strings.IndexByte(line, ' '); i >= 0 {
			keyword = line[:i]
		}
		switch keyword {
		case "FEATURES":
			p.sec = sectionFeatures
		case "ORIGIN":
			p.sec = sectionOrigin
		default:
			p.sec = sectionHeader
			p.header(keyword, value(line))
		}
		return nil
	}
	switch p.sec {
	case sectionFeatures:
		return p.featureLine(line)
	case sectionOrigin:
		for _, c := range line {
			if unicode.IsLetter(c) {
				p.seq.WriteRune(unicode.ToUpper(c))
			}
		}
	default:
		// Continuation of a header keyword, or a sub-keyword such as
		// "  ORGANISM".
		if len(line) > 2 && line[2] != ' ' {
			p.lastKey = ""
			return nil
		}
		if p.lastKey == "DEFINITION" {
			p.rec.Definition += " " + value(line)
		}
	}
	return nil
}

// value returns the text of a header line after the keyword column.
func value(line string) string {
	if len(line) <= headerValueCol {
		return ""
	}
	return strings.TrimSpace(line[headerValueCol:])
}

func (p *parser) locus(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return errors.Errorf("genbank: line %d: malformed LOCUS line", p.lineIdx)
	}
	rec := &Record{Name: fields[1]}
	for i := 2; i < len(fields); i++ {
		switch fields[i] {
		case "bp", "aa":
			n, err := strconv.Atoi(fields[i-1])
			if err != nil {
				return errors.Errorf("genbank: line %d: bad LOCUS length %q", p.lineIdx, fields[i-1])
			}
			rec.DeclaredLen = n
		case "circular", "linear":
			rec.Topology = fields[i]
		}
	}
	*p = parser{lineIdx: p.lineIdx, rec: rec}
	return nil
}

func (p *parser) header(keyword, val string) {
	p.lastKey = keyword
	switch keyword {
	case "DEFINITION":
		p.rec.Definition = val
	case "ACCESSION":
		if f := strings.Fields(val); len(f) > 0 {
			p.accession = f[0]
		}
	case "VERSION":
		if f := strings.Fields(val); len(f) > 0 {
			p.version = f[0]
		}
	}
}

func (p *parser) featureLine(line string) error {
	if !isBlank(line, qualifierCol) {
		// New feature key at column 5.
		if !isBlank(line, featureKeyCol) {
			return errors.Errorf("genbank: line %d: malformed feature line %q", p.lineIdx, line)
		}
		if err := p.flushFeature(); err != nil {
			return err
		}
		fields := strings.Fields(line)
		p.featKey = fields[0]
		if len(fields) > 1 {
			p.featLoc.WriteString(strings.Join(fields[1:], ""))
		}
		return nil
	}
	if p.featKey == "" {
		return errors.Errorf("genbank: line %d: qualifier outside a feature", p.lineIdx)
	}
	text := strings.TrimSpace(line)
	if n := len(p.quals); n > 0 && quoteOpen(p.quals[n-1]) {
		p.quals[n-1] = append(p.quals[n-1], text)
		return nil
	}
	if strings.HasPrefix(text, "/") {
		p.quals = append(p.quals, []string{text[1:]})
		return nil
	}
	if n := len(p.quals); n > 0 {
		p.quals[n-1] = append(p.quals[n-1], text)
		return nil
	}
	p.featLoc.WriteString(text)
	return nil
}

// isBlank reports whether line[:n] is all spaces (and line is longer than n).
func isBlank(line string, n int) bool {
	if len(line) <= n {
		return false
	}
	return strings.TrimLeft(line[:n], " ") == ""
}

// quoteOpen reports whether a qualifier's quoted value is still open.
func quoteOpen(lines []string) bool {
	first := lines[0]
	i := strings.IndexByte(first, '=')
	if i < 0 || i+1 >= len(first) || first[i+1] != '"' {
		return false
	}
	n := 0
	for _, l := range lines {
		n += strings.Count(l, `"`)
	}
	return n%2 == 1
}

func parseQualifier(lines []string) Qualifier {
	first := lines[0]
	i := strings.IndexByte(first, '=')
	if i < 0 {
		return Qualifier{Key: first}
	}
	q := Qualifier{Key: first[:i]}
	sep := " "
	if q.Key == "translation" {
		sep = ""
	}
	raw := strings.Join(append([]string{first[i+1:]}, lines[1:]...), sep)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = strings.Replace(raw[1:len(raw)-1], `""`, `"`, -1)
	}
	q.Value = raw
	return q
}

func (p *parser) flushFeature() error {
	if p.featKey == "" {
		return nil
	}
	loc, err := ParseLocation(p.featLoc.String())
	if err != nil {
		return errors.Wrapf(err, "genbank: line %d: feature %s", p.lineIdx, p.featKey)
	}
	f := Feature{Type: p.featKey, Location: loc}
	for _, q := range p.quals {
		f.Qualifiers = append(f.Qualifiers, parseQualifier(q))
	}
	p.rec.Features = append(p.rec.Features, f)
	p.featKey = ""
	p.featLoc.Reset()
	p.quals = nil
	return nil
}

func (p *parser) finish() (*Record, error) {
	if err := p.flushFeature(); err != nil {
		return nil, err
	}
	rec := p.rec
	rec.Seq = p.seq.String()
	switch {
	case p.version != "":
		rec.ID = p.version
	case p.accession != "":
		rec.ID = p.accession
	default:
		rec.ID = rec.Name
	}
	*p = parser{lineIdx: p.lineIdx}
	return rec, nil
}
