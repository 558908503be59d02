package invoicenumber

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubSource struct {
	max   map[string]string
	err   error
	calls []string
}

func (s *stubSource) MaxInvoiceID(_ context.Context, _ *gorm.DB, prefix string) (string, bool, error) {
	s.calls = append(s.calls, prefix)
	if s.err != nil {
		return "", false, s.err
	}
	value, ok := s.max[prefix]
	return value, ok, nil
}

func TestAllocateFirstAndNext(t *testing.T) {
	source := &stubSource{max: map[string]string{"R": "RA0041"}}
	allocator := NewAllocator(source)

	token, err := allocator.Allocate(context.Background(), nil, KindToken)
	require.NoError(t, err)
	assert.Equal(t, "TA0001", token)

	receipt, err := allocator.Allocate(context.Background(), nil, KindReceipt)
	require.NoError(t, err)
	assert.Equal(t, "RA0042", receipt)

	assert.Equal(t, []string{"T", "R"}, source.calls)
}

func TestAllocatePropagatesErrors(t *testing.T) {
	allocator := NewAllocator(&stubSource{max: map[string]string{"T": "TZ9999", "R": "R-broken"}})

	_, err := allocator.Allocate(context.Background(), nil, KindToken)
	assert.ErrorIs(t, err, ErrAllocatorExhausted)

	_, err = allocator.Allocate(context.Background(), nil, KindReceipt)
	assert.ErrorIs(t, err, ErrMalformedIdentifier)

	_, err = allocator.Allocate(context.Background(), nil, Kind("OTHER"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	storeErr := errors.New("connection reset")
	_, err = NewAllocator(&stubSource{err: storeErr}).Allocate(context.Background(), nil, KindToken)
	assert.ErrorIs(t, err, storeErr)
}
