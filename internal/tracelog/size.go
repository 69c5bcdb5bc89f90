package tracelog

import (
	"fmt"
	"strconv"
)

// ParsePageSize converts a page-size token from the trace log ("4K", "2M",
// "1G") into kilobytes. The log writer is not consistent about the case of
// the unit letter, so both cases are accepted. An unknown unit is an error:
// treating it as zero would turn a malformed claim into a guaranteed
// mismatch against an unrelated value.
func ParsePageSize(tok string) (uint64, error) {
	if len(tok) < 2 {
		return 0, fmt.Errorf("malformed page size token %q", tok)
	}

	n, err := strconv.ParseUint(tok[:len(tok)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed page size token %q: %w", tok, err)
	}

	switch tok[len(tok)-1] {
	case 'K', 'k':
		return n, nil
	case 'M', 'm':
		return n * 1024, nil
	case 'G', 'g':
		return n * 1024 * 1024, nil
	default:
		return 0, fmt.Errorf("unknown page size unit %q in token %q", string(tok[len(tok)-1]), tok)
	}
}
