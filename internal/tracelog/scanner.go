package tracelog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Assertion is one page-size claim extracted from the trace log: the
// instrumented process reported that the mapping at Addr is backed by
// pages of PageSizeKB.
type Assertion struct {
	Addr       uint64
	PageSizeKB uint64
	// Line is the raw log line the assertion came from, kept for
	// diagnostics.
	Line string
}

var assertionRe = regexp.MustCompile(`base=(0x[0-9A-Fa-f]+).*page_size=([^ ]+)`)

// Scanner lazily extracts assertions from a trace log. The log interleaves
// page-size lines with unrelated output, so any line without both a base=
// and a page_size= field is skipped. Usage mirrors bufio.Scanner:
//
//	sc := tracelog.NewScanner(f)
//	for sc.Scan() {
//		a := sc.Assertion()
//		...
//	}
//	if err := sc.Err(); err != nil {
//		...
//	}
type Scanner struct {
	lines *bufio.Scanner
	cur   Assertion
	err   error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{lines: bufio.NewScanner(r)}
}

// Scan advances to the next line carrying an assertion. It returns false
// once the log is exhausted or a matching line fails to parse; Err tells
// the two apart.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for s.lines.Scan() {
		line := s.lines.Text()

		m := assertionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		addr, err := strconv.ParseUint(strings.TrimPrefix(m[1], "0x"), 16, 64)
		if err != nil {
			s.err = fmt.Errorf("parsing address %q: %w", m[1], err)
			return false
		}

		sizeKB, err := ParsePageSize(m[2])
		if err != nil {
			s.err = fmt.Errorf("in line %q: %w", line, err)
			return false
		}

		s.cur = Assertion{Addr: addr, PageSizeKB: sizeKB, Line: line}

		return true
	}

	s.err = s.lines.Err()

	return false
}

// Assertion returns the assertion extracted by the last successful Scan.
func (s *Scanner) Assertion() Assertion {
	return s.cur
}

func (s *Scanner) Err() error {
	return s.err
}
