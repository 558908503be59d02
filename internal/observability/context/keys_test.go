package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCorrelationIDKeepsCallerValue(t *testing.T) {
	ctx, cid := EnsureCorrelationID(context.Background(), "cid-1")
	assert.Equal(t, "cid-1", cid)
	assert.Equal(t, "cid-1", CorrelationIDFromContext(ctx))

	_, again := EnsureCorrelationID(ctx, "")
	assert.Equal(t, "cid-1", again)
}

func TestEnsureCorrelationIDGeneratesULID(t *testing.T) {
	ctx, cid := EnsureCorrelationID(context.Background(), "")
	require.Len(t, cid, 26)
	assert.Equal(t, cid, CorrelationIDFromContext(ctx))
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := WithActor(WithRequestID(context.Background(), ""), "")
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, ActorFromContext(ctx))
	assert.Empty(t, ActorFromContext(nil))
}
