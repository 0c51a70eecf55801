package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// EncodeFunctionArgsToStringMap maps argument names of a contract function or constructor to
// printable values, suitable for persisting alongside a deployment.
// Example usage:
//
//	args = [coordinator, uint64(7), gasLane, uint32(500000), []string{"ipfs://a"}, fee]
//	output = {"vrfCoordinatorV2": "0x5FbD...", "subscriptionId": "7", "graffitiTokenUris": ["ipfs://a"], ...}
func EncodeFunctionArgsToStringMap(functionName string, args []any, contractABI abi.ABI) (map[string]any, error) {
	result := make(map[string]any)
	if len(args) == 0 {
		return result, nil
	}

	var inputs abi.Arguments

	// Handle constructor case
	if functionName == "constructor" {
		if contractABI.Constructor.Inputs == nil {
			return nil, fmt.Errorf("no constructor found in ABI")
		}
		inputs = contractABI.Constructor.Inputs
	} else {
		method, exists := contractABI.Methods[functionName]
		if !exists {
			return nil, fmt.Errorf("method '%s' not found in ABI", functionName)
		}
		inputs = method.Inputs
	}

	if len(args) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments for %s, got %d", len(inputs), functionName, len(args))
	}

	for i, arg := range args {
		argName := inputs[i].Name
		if argName == "" {
			argName = fmt.Sprintf("arg%d", i)
		}
		result[argName] = formatArgValue(arg)
	}

	return result, nil
}

func formatArgValue(arg any) any {
	switch v := arg.(type) {
	case string:
		return v
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case [32]byte:
		return common.Hash(v).Hex()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case []byte:
		return "0x" + strings.ToUpper(fmt.Sprintf("%x", v))
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = formatArgValue(elem)
		}
		return out
	default:
		return fmt.Sprintf("%v", v)
	}
}
