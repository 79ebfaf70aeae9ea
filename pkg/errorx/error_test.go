package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	err := New(TokenAlreadyUsed, "Token already used")
	require.True(t, Is(err, TokenAlreadyUsed))
	require.False(t, Is(err, TokenNotFound))

	wrapped := fmt.Errorf("redeem: %w", err)
	require.True(t, Is(wrapped, TokenAlreadyUsed))

	require.False(t, Is(fmt.Errorf("plain"), NotFound))
	require.False(t, Is(nil, NotFound))
}
