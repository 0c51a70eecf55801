package utils

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrEventNotFound = errors.New("event not found in receipt")

// DecodeEvent returns the fields of the first log in receipt emitted as eventName, keyed by
// parameter name. Logs are matched on the event id in topic 0, never on their position.
func DecodeEvent(contractABI abi.ABI, receipt *types.Receipt, eventName string) (map[string]any, error) {
	if receipt == nil {
		return nil, fmt.Errorf("no receipt to decode %s from", eventName)
	}
	events, err := DecodeEvents(contractABI, receipt.Logs, eventName)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%s: %w", eventName, ErrEventNotFound)
	}
	return events[0], nil
}

// DecodeEvents decodes every log emitted as eventName, in log order.
func DecodeEvents(contractABI abi.ABI, logs []*types.Log, eventName string) ([]map[string]any, error) {
	event, ok := contractABI.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("event %s not found in ABI", eventName)
	}

	var decoded []map[string]any
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		fields, err := DecodeLog(event, *log)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, fields)
	}
	return decoded, nil
}

// DecodeLog unpacks both the indexed topics and the data section of log.
func DecodeLog(event abi.Event, log types.Log) (map[string]any, error) {
	fields := make(map[string]any)
	if err := event.Inputs.UnpackIntoMap(fields, log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(log.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("%s expects %d indexed topics, log has %d", event.Name, len(indexed), len(log.Topics)-1)
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s topics: %w", event.Name, err)
	}
	return fields, nil
}
