package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Event and method names used when talking to deployed contracts.
const (
	EventSubscriptionCreated  = "SubscriptionCreated"
	EventSubscriptionFunded   = "SubscriptionFunded"
	EventConsumerAdded        = "ConsumerAdded"
	EventRandomWordsRequested = "RandomWordsRequested"
	EventRandomWordsFulfilled = "RandomWordsFulfilled"
	EventNftRequest           = "NftRequest"
	EventNftMinted            = "NftMinted"

	MethodCreateSubscription       = "createSubscription"
	MethodFundSubscription         = "fundSubscription"
	MethodAddConsumer              = "addConsumer"
	MethodConsumerIsAdded          = "consumerIsAdded"
	MethodGetSubscription          = "getSubscription"
	MethodFulfillRandomWords       = "fulfillRandomWords"
	MethodRequestRandomNft         = "requestRandomNft"
	MethodGetGraffitiTokenURIs     = "getGraffitiTokenURIs"
	MethodGetRequestToSender       = "getRequestToSender"
	MethodGetGraffitiFromModdedRng = "getGraffitiFromModdedRng"
	MethodGetTokenCounter          = "getTokenCounter"
	MethodGetMintFee               = "getMintFee"
	MethodBalanceOf                = "balanceOf"
	MethodTokenURI                 = "tokenURI"
	MethodOwnerOf                  = "ownerOf"
	MethodGetVrfCoordinator        = "getVrfCoordinator"
)

// BreedNames indexes the Graffiti Breed enum.
var BreedNames = []string{"STENCIL", "THROWIE", "MURAL"}

// CoordinatorABI covers the VRFCoordinatorV2Mock surface the deployer drives.
var CoordinatorABI = mustParseABI(`[
	{"type":"function","name":"createSubscription","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"uint64"}]},
	{"type":"function","name":"fundSubscription","stateMutability":"nonpayable","inputs":[{"name":"_subId","type":"uint64"},{"name":"_amount","type":"uint96"}],"outputs":[]},
	{"type":"function","name":"addConsumer","stateMutability":"nonpayable","inputs":[{"name":"_subId","type":"uint64"},{"name":"_consumer","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeConsumer","stateMutability":"nonpayable","inputs":[{"name":"_subId","type":"uint64"},{"name":"_consumer","type":"address"}],"outputs":[]},
	{"type":"function","name":"consumerIsAdded","stateMutability":"view","inputs":[{"name":"_subId","type":"uint64"},{"name":"_consumer","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getSubscription","stateMutability":"view","inputs":[{"name":"_subId","type":"uint64"}],"outputs":[{"name":"balance","type":"uint96"},{"name":"owner","type":"address"},{"name":"consumers","type":"address[]"}]},
	{"type":"function","name":"fulfillRandomWords","stateMutability":"nonpayable","inputs":[{"name":"_requestId","type":"uint256"},{"name":"_consumer","type":"address"}],"outputs":[]},
	{"type":"function","name":"BASE_FEE","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint96"}]},
	{"type":"function","name":"GAS_PRICE_LINK","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint96"}]},
	{"type":"event","name":"SubscriptionCreated","anonymous":false,"inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"owner","type":"address","indexed":false}]},
	{"type":"event","name":"SubscriptionFunded","anonymous":false,"inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"oldBalance","type":"uint256","indexed":false},{"name":"newBalance","type":"uint256","indexed":false}]},
	{"type":"event","name":"ConsumerAdded","anonymous":false,"inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"consumer","type":"address","indexed":false}]},
	{"type":"event","name":"ConsumerRemoved","anonymous":false,"inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"consumer","type":"address","indexed":false}]},
	{"type":"event","name":"RandomWordsRequested","anonymous":false,"inputs":[
		{"name":"keyHash","type":"bytes32","indexed":true},
		{"name":"requestId","type":"uint256","indexed":false},
		{"name":"preSeed","type":"uint256","indexed":false},
		{"name":"subId","type":"uint64","indexed":true},
		{"name":"minimumRequestConfirmations","type":"uint16","indexed":false},
		{"name":"callbackGasLimit","type":"uint32","indexed":false},
		{"name":"numWords","type":"uint32","indexed":false},
		{"name":"sender","type":"address","indexed":true}
	]},
	{"type":"event","name":"RandomWordsFulfilled","anonymous":false,"inputs":[
		{"name":"requestId","type":"uint256","indexed":true},
		{"name":"outputSeed","type":"uint256","indexed":false},
		{"name":"payment","type":"uint96","indexed":false},
		{"name":"success","type":"bool","indexed":false}
	]}
]`)

// GraffitiABI covers the Graffiti NFT surface used for minting and inspection.
var GraffitiABI = mustParseABI(`[
	{"type":"function","name":"requestRandomNft","stateMutability":"payable","inputs":[],"outputs":[{"name":"requestId","type":"uint256"}]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"getChanceArray","stateMutability":"pure","inputs":[],"outputs":[{"name":"","type":"uint256[3]"}]},
	{"type":"function","name":"getGraffitiFromModdedRng","stateMutability":"pure","inputs":[{"name":"moddedRng","type":"uint256"}],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"getMintFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getGraffitiTokenURIs","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"getRequestToSender","stateMutability":"view","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getTokenCounter","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getSubscriptionId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint64"}]},
	{"type":"function","name":"getGasLane","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getCallbackGasLimit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"getVrfCoordinator","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"event","name":"NftRequest","anonymous":false,"inputs":[{"name":"requestId","type":"uint256","indexed":true},{"name":"requester","type":"address","indexed":false}]},
	{"type":"event","name":"NftMinted","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"breed","type":"uint8","indexed":false},{"name":"minter","type":"address","indexed":false}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]}
]`)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
