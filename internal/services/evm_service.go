package services

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/graffiti-deployer/internal/contracts"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
	"go.uber.org/zap"
)

// Backend is the chain access needed to deploy and drive contracts. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ethereum.BlockNumberReader
	ethereum.ChainIDReader
}

type DeployContractArgs struct {
	ContractName    string `validate:"required"`
	ConstructorArgs []any
	// Confirmations to wait for after the deployment is mined; 0 means 1.
	Confirmations uint64
}

type DeployContractResult struct {
	ContractName    string
	Address         common.Address
	TransactionHash common.Hash
	Receipt         *types.Receipt
	Deployer        common.Address
	// EncodedConstructorArgs is the ABI encoded constructor input, as verification services expect it.
	EncodedConstructorArgs string
	ABI                    abi.ABI
}

type TransactArgs struct {
	Address  common.Address `validate:"required"`
	ABI      abi.ABI
	Method   string `validate:"required"`
	Args     []any
	Value    *big.Int
	GasLimit uint64
}

type CallArgs struct {
	Address common.Address `validate:"required"`
	ABI     abi.ABI
	Method  string `validate:"required"`
	Args    []any
}

type EvmService interface {
	// DeployContract deploys an embedded contract and waits for its confirmations.
	DeployContract(ctx context.Context, args DeployContractArgs) (*DeployContractResult, error)
	// Transact sends a state changing call and waits until it is mined successfully.
	Transact(ctx context.Context, args TransactArgs) (*types.Receipt, error)
	Call(ctx context.Context, args CallArgs) ([]any, error)
	HasCode(ctx context.Context, address common.Address) (bool, error)
	ChainID(ctx context.Context) (*big.Int, error)
	From() common.Address
}

type evmService struct {
	backend      Backend
	opts         *bind.TransactOpts
	validator    *validator.Validate
	logger       *zap.Logger
	pollInterval time.Duration
}

type EvmServiceOption func(*evmService)

// WithPollInterval sets how often block confirmations are polled.
func WithPollInterval(interval time.Duration) EvmServiceOption {
	return func(s *evmService) {
		s.pollInterval = interval
	}
}

func NewEvmService(backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, logger *zap.Logger, options ...EvmServiceOption) (EvmService, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &evmService{
		backend:      backend,
		opts:         opts,
		validator:    validator.New(),
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
	for _, option := range options {
		option(service)
	}
	return service, nil
}

func (s *evmService) From() common.Address {
	return s.opts.From
}

func (s *evmService) ChainID(ctx context.Context) (*big.Int, error) {
	return s.backend.ChainID(ctx)
}

func (s *evmService) HasCode(ctx context.Context, address common.Address) (bool, error) {
	code, err := s.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}

func (s *evmService) DeployContract(ctx context.Context, args DeployContractArgs) (*DeployContractResult, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}

	artifact, err := contracts.GetArtifact(args.ContractName)
	if err != nil {
		return nil, err
	}

	constructorArgs, err := utils.NormalizeArgs(artifact.ABI.Constructor.Inputs, args.ConstructorArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to process constructor arguments: %w", err)
	}
	encodedArgs, err := utils.PackConstructorArgs(artifact.ABI, constructorArgs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deploying contract",
		zap.String("contract", args.ContractName),
		zap.String("from", s.opts.From.Hex()),
	)
	address, tx, _, err := bind.DeployContract(s.transactOpts(ctx, nil, 0), artifact.ABI, artifact.Bytecode, s.backend, constructorArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment of %s: %w", args.ContractName, err)
	}

	receipt, err := s.waitForReceipt(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("deployment of %s: %w", args.ContractName, err)
	}
	if err := s.waitForConfirmations(ctx, receipt, args.Confirmations); err != nil {
		return nil, err
	}

	s.logger.Info("Contract deployed",
		zap.String("contract", args.ContractName),
		zap.String("address", address.Hex()),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("gasUsed", receipt.GasUsed),
	)
	return &DeployContractResult{
		ContractName:           args.ContractName,
		Address:                address,
		TransactionHash:        tx.Hash(),
		Receipt:                receipt,
		Deployer:               s.opts.From,
		EncodedConstructorArgs: hex.EncodeToString(encodedArgs),
		ABI:                    artifact.ABI,
	}, nil
}

func (s *evmService) Transact(ctx context.Context, args TransactArgs) (*types.Receipt, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}
	method, ok := args.ABI.Methods[args.Method]
	if !ok {
		return nil, fmt.Errorf("method %s not found in ABI", args.Method)
	}
	params, err := utils.NormalizeArgs(method.Inputs, args.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s arguments: %w", args.Method, err)
	}

	contract := bind.NewBoundContract(args.Address, args.ABI, s.backend, s.backend, s.backend)
	tx, err := contract.Transact(s.transactOpts(ctx, args.Value, args.GasLimit), args.Method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", args.Method, err)
	}
	s.logger.Debug("Transaction sent", zap.String("method", args.Method), zap.String("tx", tx.Hash().Hex()))

	receipt, err := s.waitForReceipt(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args.Method, err)
	}
	return receipt, nil
}

func (s *evmService) Call(ctx context.Context, args CallArgs) ([]any, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}
	method, ok := args.ABI.Methods[args.Method]
	if !ok {
		return nil, fmt.Errorf("method %s not found in ABI", args.Method)
	}
	params, err := utils.NormalizeArgs(method.Inputs, args.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s arguments: %w", args.Method, err)
	}

	contract := bind.NewBoundContract(args.Address, args.ABI, s.backend, s.backend, s.backend)
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx, From: s.opts.From}, &out, args.Method, params...); err != nil {
		return nil, fmt.Errorf("call to %s failed: %w", args.Method, err)
	}
	return out, nil
}

func (s *evmService) transactOpts(ctx context.Context, value *big.Int, gasLimit uint64) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	opts.Value = value
	opts.GasLimit = gasLimit
	return &opts
}

func (s *evmService) waitForReceipt(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, s.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// waitForConfirmations blocks until the receipt's block is buried under confirmations-1 blocks.
func (s *evmService) waitForConfirmations(ctx context.Context, receipt *types.Receipt, confirmations uint64) error {
	if confirmations <= 1 {
		return nil
	}
	target := receipt.BlockNumber.Uint64() + confirmations - 1

	for {
		head, err := s.backend.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to read block number: %w", err)
		}
		if head >= target {
			return nil
		}
		s.logger.Debug("Waiting for confirmations", zap.Uint64("head", head), zap.Uint64("target", target))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}
