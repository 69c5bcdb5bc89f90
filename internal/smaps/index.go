package smaps

import "fmt"

// AddressNotFoundError is returned by Lookup when no parsed range owns the
// address. It usually means the snapshot is stale relative to the trace
// log, or the traced process reported an address it never mapped.
type AddressNotFoundError struct {
	addr uint64
}

func (e AddressNotFoundError) Error() string {
	return fmt.Sprintf("no memory range found for address 0x%x", e.addr)
}

// Index holds parsed ranges in snapshot order. smaps guarantees segments
// do not overlap but not that they are sorted, so Lookup scans linearly.
type Index struct {
	ranges []Range
}

func NewIndex(ranges []Range) *Index {
	return &Index{ranges: ranges}
}

// Lookup returns the range containing addr.
func (ix *Index) Lookup(addr uint64) (Range, error) {
	for _, r := range ix.ranges {
		if r.Contains(addr) {
			return r, nil
		}
	}

	return Range{}, AddressNotFoundError{addr: addr}
}

// Len returns the number of indexed ranges.
func (ix *Index) Len() int {
	return len(ix.ranges)
}
