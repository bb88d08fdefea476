package redisx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesTimeout(t *testing.T) {
	r := New("localhost:6379")
	require.Equal(t, 2*time.Second, r.Options().ReadTimeout)
	require.Equal(t, 2*time.Second, r.Options().WriteTimeout)
}
