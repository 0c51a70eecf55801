package utils

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsValidHash32 reports whether s is a 0x-prefixed 32 byte hex string.
func IsValidHash32(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 66 {
		return false
	}
	_, err := hexutil.Decode(s)
	return err == nil
}

// ParseEther converts a decimal ether amount such as "0.026" into wei.
func ParseEther(amount string) (*big.Int, error) {
	value, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("invalid ether amount: %q", amount)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative ether amount: %q", amount)
	}
	value.Mul(value, new(big.Rat).SetInt(big.NewInt(params.Ether)))
	if !value.IsInt() {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", amount)
	}
	return new(big.Int).Set(value.Num()), nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	value := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	formatted := value.FloatString(18)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}

// PrivateKeyFromHex parses a hex encoded secp256k1 key, with or without the 0x prefix.
func PrivateKeyFromHex(key string) (*ecdsa.PrivateKey, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(key), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// AddressFromKey returns the account address controlled by key.
func AddressFromKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
