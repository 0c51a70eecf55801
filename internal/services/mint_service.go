package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/graffiti-deployer/internal/constants"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

type MintRequest struct {
	RequestID *big.Int
	Requester common.Address
	Receipt   *types.Receipt
}

type MintedToken struct {
	RequestID *big.Int       `json:"request_id"`
	TokenID   *big.Int       `json:"token_id"`
	Breed     uint8          `json:"breed"`
	BreedName string         `json:"breed_name"`
	Minter    common.Address `json:"minter"`
	TokenURI  string         `json:"token_uri"`
}

// MintService drives the Graffiti minting flow and its read accessors.
type MintService interface {
	// RequestNFT pays value to request a random NFT and returns the oracle request id.
	RequestNFT(ctx context.Context, contract common.Address, value *big.Int) (*MintRequest, error)
	// FulfillRandomWords answers a request on the VRF mock, which mints the token.
	FulfillRandomWords(ctx context.Context, coordinator common.Address, requestID *big.Int, consumer common.Address) (*MintedToken, error)
	// Mint requests and, on the mock, immediately fulfills one token.
	Mint(ctx context.Context, contract, coordinator common.Address, value *big.Int) (*MintedToken, error)

	MintFee(ctx context.Context, contract common.Address) (*big.Int, error)
	TokenCounter(ctx context.Context, contract common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, contract, holder common.Address) (*big.Int, error)
	TokenURI(ctx context.Context, contract common.Address, tokenID *big.Int) (string, error)
	GraffitiTokenURI(ctx context.Context, contract common.Address, index uint64) (string, error)
	RequestSender(ctx context.Context, contract common.Address, requestID *big.Int) (common.Address, error)
	BreedFromModdedRng(ctx context.Context, contract common.Address, moddedRng uint64) (uint8, error)
	VRFCoordinator(ctx context.Context, contract common.Address) (common.Address, error)
}

type mintService struct {
	evm    EvmService
	logger *zap.Logger
}

func NewMintService(evm EvmService, logger *zap.Logger) MintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mintService{evm: evm, logger: logger}
}

func (s *mintService) RequestNFT(ctx context.Context, contract common.Address, value *big.Int) (*MintRequest, error) {
	receipt, err := s.evm.Transact(ctx, TransactArgs{
		Address: contract,
		ABI:     contracts.GraffitiABI,
		Method:  contracts.MethodRequestRandomNft,
		Value:   value,
	})
	if err != nil {
		return nil, err
	}

	event, err := utils.DecodeEvent(contracts.GraffitiABI, receipt, contracts.EventNftRequest)
	if err != nil {
		return nil, err
	}
	requestID, ok := event["requestId"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("NftRequest carried no request id")
	}
	requester, _ := event["requester"].(common.Address)

	s.logger.Info("NFT requested", zap.String("requestId", requestID.String()), zap.String("requester", requester.Hex()))
	return &MintRequest{RequestID: requestID, Requester: requester, Receipt: receipt}, nil
}

func (s *mintService) FulfillRandomWords(ctx context.Context, coordinator common.Address, requestID *big.Int, consumer common.Address) (*MintedToken, error) {
	receipt, err := s.evm.Transact(ctx, TransactArgs{
		Address:  coordinator,
		ABI:      contracts.CoordinatorABI,
		Method:   contracts.MethodFulfillRandomWords,
		Args:     []any{requestID, consumer},
		GasLimit: constants.FulfillGasLimit,
	})
	if err != nil {
		return nil, err
	}

	fulfilled, err := utils.DecodeEvent(contracts.CoordinatorABI, receipt, contracts.EventRandomWordsFulfilled)
	if err != nil {
		return nil, err
	}
	if success, _ := fulfilled["success"].(bool); !success {
		return nil, fmt.Errorf("consumer callback for request %s failed", requestID)
	}

	minted, err := utils.DecodeEvent(contracts.GraffitiABI, receipt, contracts.EventNftMinted)
	if err != nil {
		return nil, err
	}
	token, err := mintedToken(requestID, minted)
	if err != nil {
		return nil, err
	}

	token.TokenURI, err = s.TokenURI(ctx, consumer, token.TokenID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("NFT minted",
		zap.String("tokenId", token.TokenID.String()),
		zap.String("breed", token.BreedName),
		zap.String("tokenURI", token.TokenURI),
	)
	return token, nil
}

func (s *mintService) Mint(ctx context.Context, contract, coordinator common.Address, value *big.Int) (*MintedToken, error) {
	request, err := s.RequestNFT(ctx, contract, value)
	if err != nil {
		return nil, err
	}
	return s.FulfillRandomWords(ctx, coordinator, request.RequestID, contract)
}

func mintedToken(requestID *big.Int, event map[string]any) (*MintedToken, error) {
	tokenID, ok := event["tokenId"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("NftMinted carried no token id")
	}
	breed, ok := event["breed"].(uint8)
	if !ok {
		return nil, fmt.Errorf("NftMinted carried no breed")
	}
	minter, _ := event["minter"].(common.Address)

	token := &MintedToken{
		RequestID: requestID,
		TokenID:   tokenID,
		Breed:     breed,
		Minter:    minter,
	}
	if int(breed) < len(contracts.BreedNames) {
		token.BreedName = contracts.BreedNames[breed]
	}
	return token, nil
}

func (s *mintService) MintFee(ctx context.Context, contract common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, s.evm, contract, contracts.MethodGetMintFee)
}

func (s *mintService) TokenCounter(ctx context.Context, contract common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, s.evm, contract, contracts.MethodGetTokenCounter)
}

func (s *mintService) BalanceOf(ctx context.Context, contract, holder common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, s.evm, contract, contracts.MethodBalanceOf, holder)
}

func (s *mintService) TokenURI(ctx context.Context, contract common.Address, tokenID *big.Int) (string, error) {
	return callOne[string](ctx, s.evm, contract, contracts.MethodTokenURI, tokenID)
}

func (s *mintService) GraffitiTokenURI(ctx context.Context, contract common.Address, index uint64) (string, error) {
	return callOne[string](ctx, s.evm, contract, contracts.MethodGetGraffitiTokenURIs, index)
}

func (s *mintService) RequestSender(ctx context.Context, contract common.Address, requestID *big.Int) (common.Address, error) {
	return callOne[common.Address](ctx, s.evm, contract, contracts.MethodGetRequestToSender, requestID)
}

func (s *mintService) BreedFromModdedRng(ctx context.Context, contract common.Address, moddedRng uint64) (uint8, error) {
	return callOne[uint8](ctx, s.evm, contract, contracts.MethodGetGraffitiFromModdedRng, moddedRng)
}

func (s *mintService) VRFCoordinator(ctx context.Context, contract common.Address) (common.Address, error) {
	return callOne[common.Address](ctx, s.evm, contract, contracts.MethodGetVrfCoordinator)
}

func callOne[T any](ctx context.Context, evm EvmService, contract common.Address, method string, args ...any) (T, error) {
	var zero T
	out, err := evm.Call(ctx, CallArgs{
		Address: contract,
		ABI:     contracts.GraffitiABI,
		Method:  method,
		Args:    args,
	})
	if err != nil {
		return zero, err
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("%s returned %d values", method, len(out))
	}
	value, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s returned %T", method, out[0])
	}
	return value, nil
}
