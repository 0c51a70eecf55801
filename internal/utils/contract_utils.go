package utils

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// PackConstructorArgs ABI encodes args against the constructor of contractABI.
func PackConstructorArgs(contractABI abi.ABI, args []any) ([]byte, error) {
	constructor := contractABI.Constructor

	// Check if constructor requires arguments but none provided
	if len(constructor.Inputs) > 0 && len(args) == 0 {
		return nil, fmt.Errorf("contract constructor requires %d arguments but none provided", len(constructor.Inputs))
	}

	if len(args) == 0 {
		return []byte{}, nil
	}

	processedArgs, err := NormalizeArgs(constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("failed to process constructor arguments: %w", err)
	}

	encodedArgs, err := constructor.Inputs.Pack(processedArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}

	return encodedArgs, nil
}

// NormalizeArgs converts loosely typed args (strings, ints, []any) into the Go types
// the ABI packer expects for each input.
func NormalizeArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}

	processedArgs := make([]any, len(args))
	for i, input := range inputs {
		processedArg, err := processArg(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("failed to process argument %d (%s): %w", i, input.Name, err)
		}
		processedArgs[i] = processedArg
	}
	return processedArgs, nil
}

func processArg(argType abi.Type, value any) (any, error) {
	switch argType.T {
	case abi.AddressTy:
		switch v := value.(type) {
		case string:
			if !common.IsHexAddress(v) {
				return nil, fmt.Errorf("invalid address: %s", v)
			}
			return common.HexToAddress(v), nil
		case common.Address:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported address type: %T", value)
		}

	case abi.UintTy, abi.IntTy:
		bigInt, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return fitInteger(argType, bigInt)

	case abi.BoolTy:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strings.ToLower(v) == "true", nil
		default:
			return nil, fmt.Errorf("unsupported bool type: %T", value)
		}

	case abi.StringTy:
		switch v := value.(type) {
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported string type: %T", value)
		}

	case abi.BytesTy, abi.FixedBytesTy:
		var raw []byte
		switch v := value.(type) {
		case string:
			decoded, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
			if err != nil {
				return nil, fmt.Errorf("invalid hex string: %w", err)
			}
			raw = decoded
		case []byte:
			raw = v
		case common.Hash:
			raw = v.Bytes()
		case [32]byte:
			raw = v[:]
		default:
			return nil, fmt.Errorf("unsupported bytes type: %T", value)
		}
		if argType.T == abi.BytesTy {
			return raw, nil
		}
		if len(raw) != argType.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", argType.Size, len(raw))
		}
		fixed := reflect.New(argType.GetType()).Elem()
		reflect.Copy(fixed, reflect.ValueOf(raw))
		return fixed.Interface(), nil

	case abi.ArrayTy, abi.SliceTy:
		elems, err := toAnySlice(value)
		if err != nil {
			return nil, err
		}
		if argType.T == abi.ArrayTy && len(elems) != argType.Size {
			return nil, fmt.Errorf("expected array of length %d, got %d", argType.Size, len(elems))
		}

		// Build a typed slice so the packer sees []string, []common.Address, etc.
		var typed reflect.Value
		if argType.T == abi.ArrayTy {
			typed = reflect.New(argType.GetType()).Elem()
		} else {
			typed = reflect.MakeSlice(argType.GetType(), len(elems), len(elems))
		}
		for i, elem := range elems {
			processed, err := processArg(*argType.Elem, elem)
			if err != nil {
				return nil, fmt.Errorf("failed to process array element %d: %w", i, err)
			}
			v := reflect.ValueOf(processed)
			if !v.Type().AssignableTo(typed.Index(i).Type()) {
				return nil, fmt.Errorf("array element %d has type %T, want %s", i, processed, typed.Index(i).Type())
			}
			typed.Index(i).Set(v)
		}
		return typed.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported argument type: %v", argType)
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case string:
		bigInt, ok := new(big.Int).SetString(v, 10)
		if !ok {
			bigInt, ok = new(big.Int).SetString(strings.TrimPrefix(v, "0x"), 16)
			if !ok {
				return nil, fmt.Errorf("invalid integer: %s", v)
			}
		}
		return bigInt, nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported integer type: %T", value)
	}
}

// fitInteger returns the Go type go-ethereum binds for the integer size:
// uint8..uint64 / int8..int64 for sizes up to 64 bits, *big.Int above.
func fitInteger(argType abi.Type, v *big.Int) (any, error) {
	unsigned := argType.T == abi.UintTy
	if unsigned && v.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for %s", v, argType)
	}
	magnitude := v
	limit := argType.Size
	if !unsigned {
		limit--
		if v.Sign() < 0 {
			// two's complement allows one more negative value
			magnitude = new(big.Int).Neg(v)
			magnitude.Sub(magnitude, big.NewInt(1))
		}
	}
	if magnitude.BitLen() > limit {
		return nil, fmt.Errorf("value %s overflows %s", v, argType)
	}
	if argType.Size > 64 {
		return v, nil
	}

	if unsigned {
		u := v.Uint64()
		switch argType.Size {
		case 8:
			return uint8(u), nil
		case 16:
			return uint16(u), nil
		case 32:
			return uint32(u), nil
		case 64:
			return u, nil
		}
		return v, nil
	}

	i := v.Int64()
	switch argType.Size {
	case 8:
		return int8(i), nil
	case 16:
		return int16(i), nil
	case 32:
		return int32(i), nil
	case 64:
		return i, nil
	}
	return v, nil
}

func toAnySlice(value any) ([]any, error) {
	if slice, ok := value.([]any); ok {
		return slice, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected array, got %T", value)
	}
	// []byte is a bytes value, not an array of uint8 arguments
	if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
		return nil, fmt.Errorf("expected array, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
