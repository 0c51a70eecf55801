package utils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsABI = `[
	{"type":"event","name":"SubscriptionCreated","anonymous":false,"inputs":[
		{"name":"subId","type":"uint64","indexed":true},
		{"name":"owner","type":"address","indexed":false}
	]},
	{"type":"event","name":"NftRequest","anonymous":false,"inputs":[
		{"name":"requestId","type":"uint256","indexed":true},
		{"name":"requester","type":"address","indexed":false}
	]}
]`

func subscriptionCreatedLog(t *testing.T, contractABI abi.ABI, subID uint64, owner common.Address) *types.Log {
	event := contractABI.Events["SubscriptionCreated"]
	data, err := event.Inputs.NonIndexed().Pack(owner)
	require.NoError(t, err)
	return &types.Log{
		Topics: []common.Hash{event.ID, common.BigToHash(new(big.Int).SetUint64(subID))},
		Data:   data,
	}
}

func TestDecodeEvent(t *testing.T) {
	contractABI, err := abi.JSON(strings.NewReader(eventsABI))
	require.NoError(t, err)
	owner := common.HexToAddress(TestAccountAddress)

	t.Run("finds event regardless of log position", func(t *testing.T) {
		requestEvent := contractABI.Events["NftRequest"]
		requestData, err := requestEvent.Inputs.NonIndexed().Pack(owner)
		require.NoError(t, err)

		receipt := &types.Receipt{Logs: []*types.Log{
			{Topics: []common.Hash{common.HexToHash("0x01")}},
			{Topics: []common.Hash{requestEvent.ID, common.BigToHash(big.NewInt(9))}, Data: requestData},
			subscriptionCreatedLog(t, contractABI, 7, owner),
		}}

		fields, err := DecodeEvent(contractABI, receipt, "SubscriptionCreated")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), fields["subId"])
		assert.Equal(t, owner, fields["owner"])

		fields, err = DecodeEvent(contractABI, receipt, "NftRequest")
		require.NoError(t, err)
		assert.Equal(t, 0, big.NewInt(9).Cmp(fields["requestId"].(*big.Int)))
		assert.Equal(t, owner, fields["requester"])
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := DecodeEvent(contractABI, &types.Receipt{}, "SubscriptionCreated")
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("unknown event name", func(t *testing.T) {
		_, err := DecodeEvent(contractABI, &types.Receipt{}, "Transfer")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("nil receipt", func(t *testing.T) {
		_, err := DecodeEvent(contractABI, nil, "SubscriptionCreated")
		assert.Error(t, err)
	})

	t.Run("malformed topics", func(t *testing.T) {
		log := subscriptionCreatedLog(t, contractABI, 7, owner)
		log.Topics = log.Topics[:1]
		_, err := DecodeEvent(contractABI, &types.Receipt{Logs: []*types.Log{log}}, "SubscriptionCreated")
		assert.Error(t, err)
	})
}

func TestDecodeEvents(t *testing.T) {
	contractABI, err := abi.JSON(strings.NewReader(eventsABI))
	require.NoError(t, err)
	owner := common.HexToAddress(TestAccountAddress)

	logs := []*types.Log{
		subscriptionCreatedLog(t, contractABI, 1, owner),
		subscriptionCreatedLog(t, contractABI, 2, owner),
	}
	events, err := DecodeEvents(contractABI, logs, "SubscriptionCreated")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0]["subId"])
	assert.Equal(t, uint64(2), events[1]["subId"])
}
