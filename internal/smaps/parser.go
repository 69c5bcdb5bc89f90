package smaps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	segmentStartRe   = regexp.MustCompile(`^([0-9a-f]+)-([0-9a-f]+) [-rwxps]{4}`)
	kernelPageSizeRe = regexp.MustCompile(`^KernelPageSize:\s*(\d+) kB`)
	vmFlagsRe        = regexp.MustCompile(`^VmFlags: ([\w? ]*)`)
)

// record accumulates the fields of the segment currently being parsed.
type record struct {
	start      uint64
	end        uint64
	pageSizeKB uint64
	vmFlags    string
}

// Parser turns an smaps stream into a slice of Ranges, one line at a time.
// A segment has no terminator line: an open record is flushed when the next
// segment-start line arrives, and Finish flushes the record left open at
// end of input.
type Parser struct {
	open   *record
	ranges []Range
	lineno int
}

// Eat consumes one line. Lines that are neither a segment start, a
// KernelPageSize field nor a VmFlags field are ignored; smaps carries many
// fields this tool has no use for.
func (p *Parser) Eat(line string) error {
	p.lineno++

	if m := segmentStartRe.FindStringSubmatch(line); m != nil {
		if err := p.flush(); err != nil {
			return err
		}

		start, err := strconv.ParseUint(m[1], 16, 64)
		if err != nil {
			return fmt.Errorf("line %d: parsing start address %q: %w", p.lineno, m[1], err)
		}
		end, err := strconv.ParseUint(m[2], 16, 64)
		if err != nil {
			return fmt.Errorf("line %d: parsing end address %q: %w", p.lineno, m[2], err)
		}

		p.open = &record{start: start, end: end}

		return nil
	}

	// Field lines before the first segment start should not occur, but a
	// truncated snapshot is not worth failing over.
	if p.open == nil {
		return nil
	}

	if m := kernelPageSizeRe.FindStringSubmatch(line); m != nil {
		sizeKB, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: parsing kernel page size %q: %w", p.lineno, m[1], err)
		}

		p.open.pageSizeKB = sizeKB

		return nil
	}

	if m := vmFlagsRe.FindStringSubmatch(line); m != nil {
		p.open.vmFlags = m[1]
	}

	return nil
}

// Finish flushes the record left open by the last segment of the input and
// returns all parsed ranges.
func (p *Parser) Finish() ([]Range, error) {
	if err := p.flush(); err != nil {
		return nil, err
	}

	return p.ranges, nil
}

func (p *Parser) flush() error {
	if p.open == nil {
		return nil
	}

	r := Range{
		Start:      p.open.start,
		End:        p.open.end,
		PageSizeKB: p.open.pageSizeKB,
	}
	if r.PageSizeKB == 0 {
		return fmt.Errorf("segment 0x%x-0x%x has no KernelPageSize field", r.Start, r.End)
	}

	for _, flag := range strings.Fields(p.open.vmFlags) {
		switch flag {
		case "ht":
			r.ExplicitHuge = true
		case "hg":
			r.TransparentHuge = true
		}
	}

	p.ranges = append(p.ranges, r)
	p.open = nil

	return nil
}

// Parse reads a whole smaps snapshot.
func Parse(r io.Reader) ([]Range, error) {
	sc := bufio.NewScanner(r)
	p := &Parser{}

	for sc.Scan() {
		if err := p.Eat(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading smaps: %w", err)
	}

	return p.Finish()
}

// ParseFile parses the smaps snapshot at path.
func ParseFile(path string) ([]Range, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening smaps snapshot: %w", err)
	}

	defer f.Close()

	ranges, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return ranges, nil
}
