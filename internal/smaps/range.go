package smaps

import "fmt"

// Range is one contiguous mapping segment reported by the kernel in
// /proc/<pid>/smaps. Addresses form the half-open interval [Start, End).
type Range struct {
	Start uint64
	End   uint64
	// PageSizeKB is the KernelPageSize field in kB. For mappings promoted
	// by transparent huge pages the kernel keeps reporting the base page
	// size here.
	PageSizeKB uint64
	// TransparentHuge is set when the VmFlags line carries "hg", meaning
	// the mapping is madvised huge.
	TransparentHuge bool
	// ExplicitHuge is set when the VmFlags line carries "ht", meaning the
	// mapping is backed by hugetlbfs.
	ExplicitHuge bool
}

// Contains reports whether addr falls inside the range.
// The end address is exclusive.
func (r Range) Contains(addr uint64) bool {
	return r.Start <= addr && addr < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[0x%x, 0x%x) pageSize=%dkB thp=%t hugetlb=%t",
		r.Start, r.End, r.PageSizeKB, r.TransparentHuge, r.ExplicitHuge)
}
