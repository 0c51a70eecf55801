package models

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Value(t *testing.T) {
	tests := []struct {
		name     string
		json     JSON
		expected interface{}
	}{
		{name: "nil JSON", json: nil, expected: nil},
		{name: "empty JSON", json: JSON{}, expected: []byte("{}")},
		{name: "nested values", json: JSON{"subId": float64(1), "uris": []interface{}{"ipfs://a"}}, expected: []byte(`{"subId":1,"uris":["ipfs://a"]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.json.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestJSON_Scan(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"key":"value"}`)))
	assert.Equal(t, JSON{"key": "value"}, j)

	require.NoError(t, j.Scan(`{"n":2}`))
	assert.Equal(t, JSON{"n": float64(2)}, j)

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))
	assert.Error(t, j.Scan([]byte("{not json")))
}

func TestJSON_String(t *testing.T) {
	assert.Equal(t, "", JSON(nil).String())
	assert.Equal(t, `{"a":1}`, JSON{"a": 1}.String())
	assert.Equal(t, "", JSON{"bad": make(chan int)}.String())
}

func TestStringList_RoundTrip(t *testing.T) {
	list := StringList{"ipfs://a", "ipfs://b", "ipfs://c"}
	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `["ipfs://a","ipfs://b","ipfs://c"]`, value)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)

	nilValue, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)
}

func TestDeploymentArgs_ValuesOrder(t *testing.T) {
	network := ResolvedNetwork{
		VRFCoordinator:   common.HexToAddress("0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"),
		SubscriptionID:   3126,
		GasLane:          common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"),
		CallbackGasLimit: 50000000,
		MintFee:          big.NewInt(26e15),
	}
	uris := []string{"ipfs://a", "ipfs://b", "ipfs://c"}

	args := NewDeploymentArgs(network, uris)
	require.NoError(t, args.Validate())

	values := args.Values()
	require.Len(t, values, 6)
	assert.Equal(t, network.VRFCoordinator, values[0])
	assert.Equal(t, uint64(3126), values[1])
	assert.Equal(t, network.GasLane, values[2])
	assert.Equal(t, uint32(50000000), values[3])
	assert.Equal(t, uris, values[4])
	assert.Equal(t, network.MintFee, values[5])
}

func TestDeploymentArgs_Validate(t *testing.T) {
	valid := DeploymentArgs{
		VRFCoordinator:   common.HexToAddress("0x01"),
		SubscriptionID:   1,
		GasLane:          common.HexToHash("0x02"),
		CallbackGasLimit: 1,
		TokenURIs:        []string{"ipfs://a"},
		MintFee:          big.NewInt(0),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(a *DeploymentArgs)
		message string
	}{
		{name: "coordinator", mutate: func(a *DeploymentArgs) { a.VRFCoordinator = common.Address{} }, message: "vrf coordinator"},
		{name: "subscription", mutate: func(a *DeploymentArgs) { a.SubscriptionID = 0 }, message: "subscription id"},
		{name: "gas lane", mutate: func(a *DeploymentArgs) { a.GasLane = common.Hash{} }, message: "gas lane"},
		{name: "callback gas", mutate: func(a *DeploymentArgs) { a.CallbackGasLimit = 0 }, message: "callback gas limit"},
		{name: "no uris", mutate: func(a *DeploymentArgs) { a.TokenURIs = nil }, message: "token uris are missing"},
		{name: "blank uri", mutate: func(a *DeploymentArgs) { a.TokenURIs = []string{"ipfs://a", " "} }, message: "token uri 1 is empty"},
		{name: "nil fee", mutate: func(a *DeploymentArgs) { a.MintFee = nil }, message: "mint fee is missing"},
		{name: "negative fee", mutate: func(a *DeploymentArgs) { a.MintFee = big.NewInt(-1) }, message: "mint fee is negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := valid
			args.TokenURIs = append([]string(nil), valid.TokenURIs...)
			tt.mutate(&args)
			err := args.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestResolvedNetwork_Missing(t *testing.T) {
	assert.Equal(t,
		[]string{"vrf_coordinator", "subscription_id", "gas_lane", "callback_gas_limit", "mint_fee"},
		ResolvedNetwork{}.Missing(),
	)

	complete := ResolvedNetwork{
		VRFCoordinator:   common.HexToAddress("0x01"),
		SubscriptionID:   1,
		GasLane:          common.HexToHash("0x02"),
		CallbackGasLimit: 1,
		MintFee:          big.NewInt(1),
	}
	assert.Empty(t, complete.Missing())
}

func TestNetworkConfig_Confirmations(t *testing.T) {
	assert.Equal(t, uint64(1), NetworkConfig{}.Confirmations())
	assert.Equal(t, uint64(6), NetworkConfig{BlockConfirmations: 6}.Confirmations())
}

func TestParseUploadFailurePolicy(t *testing.T) {
	policy, err := ParseUploadFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, UploadFailureAbort, policy)

	for _, name := range []string{"abort", "skip", "placeholder"} {
		policy, err := ParseUploadFailurePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, UploadFailurePolicy(name), policy)
	}

	_, err = ParseUploadFailurePolicy("retry")
	assert.Error(t, err)
}
