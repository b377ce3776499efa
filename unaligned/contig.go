package unaligned

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

var (
	contigRe = regexp.MustCompile(`NODE_\d+_length_\d+_cov_[\d.]+`)
	sizeRe   = regexp.MustCompile(`length_(\d+)_cov_([\d.]+)`)
)

// Contig is one assembled contig.
type Contig struct {
	// ID is the full contig name, e.g. "NODE_1_length_1000_cov_2.5".
	ID string
	// Length is the contig length in bases.
	Length float64
	// Cov is the mean k-mer coverage embedded in the name.
	Cov float64
}

// Bases returns the estimated number of sequenced bases behind the contig.
func (c Contig) Bases() float64 {
	return c.Length * c.Cov
}

// ParseContigID extracts the first contig name found in s, along with its
// length and coverage.  ok is false if s contains no contig name.  A name
// whose length or coverage is not a number (the pattern admits "1.2.3") is an
// error.
func ParseContigID(s string) (c Contig, ok bool, err error) {
	id := contigRe.FindString(s)
	if id == "" {
		return
	}
	m := sizeRe.FindStringSubmatch(id)
	if m == nil {
		return
	}
	if c.Length, err = strconv.ParseFloat(m[1], 64); err != nil {
		return Contig{}, false, errors.E(errors.Invalid, fmt.Sprintf("bad length %q in %s", m[1], id))
	}
	if c.Cov, err = strconv.ParseFloat(m[2], 64); err != nil {
		return Contig{}, false, errors.E(errors.Invalid, fmt.Sprintf("bad coverage %q in %s", m[2], id))
	}
	c.ID = id
	return c, true, nil
}

// openText opens path for line-oriented reading, decompressing it if needed.
// The returned closer closes both the decompressor and the file.
func openText(ctx context.Context, path string) (io.Reader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "open", path)
	}
	r, _ := compress.NewReader(in.Reader(ctx))
	closer := func() error {
		err := r.Close()
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
		return err
	}
	return r, closer, nil
}

// ReadUnalignedList reads a newline-delimited list of contig names.  Leading
// and trailing whitespace is ignored, as are blank lines.
func ReadUnalignedList(ctx context.Context, path string) (ids map[string]bool, err error) {
	r, closer, err := openText(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	ids = make(map[string]bool)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<24)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids[id] = true
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.E(err, "read", path)
	}
	return ids, nil
}

// ScanAlignments returns one Contig for every line of the alignment report
// that mentions a contig name.  A contig appearing on several lines is
// returned once per line.
func ScanAlignments(ctx context.Context, path string) (contigs []Contig, err error) {
	r, closer, err := openText(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	contigs, err = scanContigs(r)
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	return contigs, nil
}

func scanContigs(r io.Reader) ([]Contig, error) {
	var contigs []Contig
	scanner := bufio.NewScanner(r)
	// Alignment reports can carry whole sequences in a column.
	scanner.Buffer(nil, 1<<28)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		c, ok, err := ParseContigID(scanner.Text())
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("line %d", lineIdx))
		}
		if ok {
			contigs = append(contigs, c)
		}
	}
	return contigs, scanner.Err()
}
