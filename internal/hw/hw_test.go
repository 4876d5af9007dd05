package hw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The probe result is latched on first use and never re-evaluated.
func TestAvailableIsLatched(t *testing.T) {
	first := Available()
	for i := 0; i < 3; i++ {
		require.Equal(t, first, Available())
	}
}
