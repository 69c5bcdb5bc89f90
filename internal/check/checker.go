package check

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/jackh2000/pagecheck/internal/smaps"
	"github.com/jackh2000/pagecheck/internal/tracelog"
)

// MismatchError reports a page-size claim that disagrees with the kernel's
// mapping table.
type MismatchError struct {
	Addr       uint64
	ReportedKB uint64 // KernelPageSize from the smaps snapshot
	ClaimedKB  uint64 // page size claimed by the trace log
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("page sizes mismatch for address 0x%x: %d kB != %d kB",
		e.Addr, e.ReportedKB, e.ClaimedKB)
}

// Checker verifies trace-log page-size claims against the snapshot index.
type Checker struct {
	index  *smaps.Index
	logger *zap.Logger
}

func New(index *smaps.Index, logger *zap.Logger) *Checker {
	return &Checker{index: index, logger: logger}
}

// Check verifies a single assertion. A claim larger than the reported page
// size is accepted on transparent-huge mappings: the kernel keeps
// reporting the base page size after promoting such a mapping, so the
// traced process is the only side that sees the real backing size. A claim
// below the reported size is never accepted.
func (c *Checker) Check(a tracelog.Assertion) error {
	r, err := c.index.Lookup(a.Addr)
	if err != nil {
		return err
	}

	c.logger.Debug("comparing page sizes",
		zap.String("line", a.Line),
		zap.String("range", r.String()),
		zap.String("reported", humanize.IBytes(r.PageSizeKB*1024)),
		zap.String("claimed", humanize.IBytes(a.PageSizeKB*1024)),
	)

	if a.PageSizeKB == r.PageSizeKB {
		return nil
	}

	if a.PageSizeKB > r.PageSizeKB && r.TransparentHuge {
		c.logger.Debug("claim above reported size tolerated on thp mapping",
			zap.Uint64("addr", a.Addr))

		return nil
	}

	return MismatchError{Addr: a.Addr, ReportedKB: r.PageSizeKB, ClaimedKB: a.PageSizeKB}
}

// Run drains the scanner and fails on the first inconsistent assertion.
func (c *Checker) Run(sc *tracelog.Scanner) error {
	checked := 0

	for sc.Scan() {
		if err := c.Check(sc.Assertion()); err != nil {
			return err
		}

		checked++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading trace log: %w", err)
	}

	c.logger.Info("all page size claims consistent", zap.Int("assertions", checked))

	return nil
}
