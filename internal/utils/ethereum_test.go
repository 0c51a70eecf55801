package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestIsValidEthereumAddress(t *testing.T) {
	t.Run("ValidAddresses", func(t *testing.T) {
		validAddresses := []string{
			"0x1234567890123456789012345678901234567890",
			"0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625",
			"0x0000000000000000000000000000000000000000",
		}

		for _, addr := range validAddresses {
			assert.True(t, IsValidEthereumAddress(addr), "Address should be valid: %s", addr)
		}
	})

	t.Run("InvalidAddresses", func(t *testing.T) {
		invalidAddresses := []string{
			"",
			"0x123",
			"0x12345678901234567890123456789012345678901",
			"0xGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGG",
		}

		for _, addr := range invalidAddresses {
			assert.False(t, IsValidEthereumAddress(addr), "Address should be invalid: %s", addr)
		}
	})
}

func TestIsValidHash32(t *testing.T) {
	assert.True(t, IsValidHash32("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"))
	assert.False(t, IsValidHash32("474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"))
	assert.False(t, IsValidHash32("0x474e34"))
	assert.False(t, IsValidHash32("0xzz4e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"))
}

func TestParseEther(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
		wantErr  bool
	}{
		{amount: "0.026", expected: "26000000000000000"},
		{amount: "1", expected: "1000000000000000000"},
		{amount: "1000", expected: "1000000000000000000000"},
		{amount: "0", expected: "0"},
		{amount: "0.0000000000000000001", wantErr: true},
		{amount: "-1", wantErr: true},
		{amount: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			wei, err := ParseEther(tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, wei.String())
		})
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0.026", FormatEther(big.NewInt(26000000000000000)))
	assert.Equal(t, "1", FormatEther(big.NewInt(1000000000000000000)))
	assert.Equal(t, "0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "0", FormatEther(nil))
}

func TestPrivateKeyFromHex(t *testing.T) {
	key, err := PrivateKeyFromHex(anvilKey)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())

	withoutPrefix, err := PrivateKeyFromHex(anvilKey[2:])
	require.NoError(t, err)
	assert.Equal(t, key.D, withoutPrefix.D)

	_, err = PrivateKeyFromHex("0x1234")
	assert.Error(t, err)
}
