package smaps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `700000000-73ea00000 rw-p 00000000 00:00 0
Size:            1026048 kB
Rss:             1026048 kB
KernelPageSize:     2048 kB
MMUPageSize:        2048 kB
VmFlags: rd wr mr mw me ac sd ht
7f5e10000000-7f5e10021000 rw-p 00000000 00:00 0
Size:                132 kB
KernelPageSize:        4 kB
VmFlags: rd wr mr mw me nr sd
7f5e14000000-7f5e18000000 rw-p 00000000 00:00 0
KernelPageSize:        4 kB
VmFlags: rd wr mr mw me ac sd hg
`

func TestParse(t *testing.T) {
	t.Parallel()

	ranges, err := Parse(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	assert.Equal(t, Range{
		Start:        0x700000000,
		End:          0x73ea00000,
		PageSizeKB:   2048,
		ExplicitHuge: true,
	}, ranges[0])

	assert.Equal(t, Range{
		Start:      0x7f5e10000000,
		End:        0x7f5e10021000,
		PageSizeKB: 4,
	}, ranges[1])

	// The last segment has no following segment-start line to trigger its
	// flush; its fields must still be attributed to it.
	assert.Equal(t, Range{
		Start:           0x7f5e14000000,
		End:             0x7f5e18000000,
		PageSizeKB:      4,
		TransparentHuge: true,
	}, ranges[2])
}

func TestParse_OneRangePerSegmentStart(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString("700000000-73ea00000 rw-p 00000000 00:00 0\n")
		sb.WriteString("KernelPageSize:        4 kB\n")
	}

	ranges, err := Parse(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, ranges, 5)
}

func TestParse_IgnoresNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot string
	}{
		{
			name: "field lines before first segment",
			snapshot: "KernelPageSize:        4 kB\n" +
				"VmFlags: rd wr ht\n" +
				"700000000-73ea00000 rw-p 00000000 00:00 0\n" +
				"KernelPageSize:     2048 kB\n",
		},
		{
			name: "unknown field lines inside a segment",
			snapshot: "700000000-73ea00000 rw-p 00000000 00:00 0\n" +
				"Locked:                0 kB\n" +
				"THPeligible:           0\n" +
				"ProtectionKey:         0\n" +
				"KernelPageSize:     2048 kB\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ranges, err := Parse(strings.NewReader(tt.snapshot))
			require.NoError(t, err)
			require.Len(t, ranges, 1)
			assert.Equal(t, uint64(2048), ranges[0].PageSizeKB)
			assert.False(t, ranges[0].ExplicitHuge)
		})
	}
}

func TestParse_VmFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		flags           string
		transparentHuge bool
		explicitHuge    bool
	}{
		{name: "hugetlb", flags: "rd wr mr mw me ac sd ht", explicitHuge: true},
		{name: "madvise huge", flags: "rd wr mr mw me ac sd hg", transparentHuge: true},
		{name: "both", flags: "ht hg", transparentHuge: true, explicitHuge: true},
		{name: "neither", flags: "rd wr mr mw me ac sd"},
		{name: "empty", flags: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snapshot := "700000000-73ea00000 rw-p 00000000 00:00 0\n" +
				"KernelPageSize:        4 kB\n" +
				"VmFlags: " + tt.flags + "\n"

			ranges, err := Parse(strings.NewReader(snapshot))
			require.NoError(t, err)
			require.Len(t, ranges, 1)
			assert.Equal(t, tt.transparentHuge, ranges[0].TransparentHuge)
			assert.Equal(t, tt.explicitHuge, ranges[0].ExplicitHuge)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot string
	}{
		{
			// 17 hex digits overflow a 64-bit address.
			name:     "start address out of range",
			snapshot: "fffffffffffffffff-ffffffffffffffff0 rw-p 00000000 00:00 0\n",
		},
		{
			name: "segment without kernel page size",
			snapshot: "700000000-73ea00000 rw-p 00000000 00:00 0\n" +
				"VmFlags: rd wr\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.snapshot))
			require.Error(t, err)
		})
	}
}
