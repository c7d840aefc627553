package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountNumber(t *testing.T) {
	number, err := GenerateAccountNumber("2210", 16)
	require.NoError(t, err)
	assert.Len(t, number, 16)
	assert.True(t, strings.HasPrefix(number, "2210"))
	for _, r := range number {
		assert.True(t, r >= '0' && r <= '9', "account number must be digits only, got %q", number)
	}
}

func TestGenerateAccountNumberRejectsBadLength(t *testing.T) {
	_, err := GenerateAccountNumber("2210", 3)
	require.Error(t, err)

	_, err = GenerateAccountNumber("2210", 21)
	require.Error(t, err)
}
