package invoicenumber

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		prefix string
		last   string
		want   string
	}{
		{"T", "", "TA0001"},
		{"R", "", "RA0001"},
		{"T", "TA0001", "TA0002"},
		{"T", "TA0099", "TA0100"},
		{"T", "TA9999", "TB0001"},
		{"R", "RY9999", "RZ0001"},
		{"R", "RZ9998", "RZ9999"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix+"/"+tt.last, func(t *testing.T) {
			got, err := Next(tt.prefix, tt.last)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextExhausted(t *testing.T) {
	_, err := Next("T", "TZ9999")
	assert.ErrorIs(t, err, ErrAllocatorExhausted)
}

func TestNextMalformed(t *testing.T) {
	for _, last := range []string{"TA001", "TA00012", "Ta0001", "TA00X1", "TA0000", "XA0001", "T10001", "RA0001"} {
		t.Run(last, func(t *testing.T) {
			_, err := Next("T", last)
			assert.ErrorIs(t, err, ErrMalformedIdentifier)
			assert.Contains(t, err.Error(), last)
		})
	}
}

func TestNextIsStrictlyIncreasing(t *testing.T) {
	last := ""
	for i := 0; i < 12000; i++ {
		next, err := Next("R", last)
		require.NoError(t, err)
		if last != "" {
			require.Greater(t, next, last)
		}
		last = next
	}
	assert.Equal(t, "RB2001", last)
}

func TestParseRoundTrip(t *testing.T) {
	id, err := Parse("TC0420")
	require.NoError(t, err)
	assert.Equal(t, Identifier{Prefix: "T", Band: 'C', Seq: 420}, id)
	assert.Equal(t, "TC0420", id.String())
}

func TestKinds(t *testing.T) {
	kind, err := ParseKind(" token ")
	require.NoError(t, err)
	assert.Equal(t, KindToken, kind)

	prefix, err := Prefix(KindReceipt)
	require.NoError(t, err)
	assert.Equal(t, "R", prefix)

	_, err = ParseKind("VOUCHER")
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = Prefix(Kind("VOUCHER"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func ExampleNext() {
	next, _ := Next("T", "TA9999")
	fmt.Println(next)
	// Output: TB0001
}
