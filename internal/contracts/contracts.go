package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/graffiti-deployer/internal/utils"
)

//go:embed solidity/*.sol
var solidityFS embed.FS

const (
	GraffitiContractName           = "Graffiti"
	VRFCoordinatorMockContractName = "VRFCoordinatorV2Mock"

	CompilerVersion     = "0.8.24"
	CompilerLongVersion = "v0.8.24+commit.e11b9ed9"

	// GraffitiTokenURICount is the number of breeds; the constructor rejects any other length.
	GraffitiTokenURICount = 3
)

var sourceFiles = map[string]string{
	GraffitiContractName:           "Graffiti.sol",
	VRFCoordinatorMockContractName: "VRFCoordinatorV2Mock.sol",
}

// Artifact is a compiled, deployable contract.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	ABIJSON  string
	Bytecode []byte
	Source   string
}

var (
	artifactsMu sync.Mutex
	artifacts   = map[string]*Artifact{}
)

// Sources exposes the embedded Solidity files at the root of the returned FS.
func Sources() fs.FS {
	sub, err := fs.Sub(solidityFS, "solidity")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source returns the Solidity source defining the named contract.
func Source(name string) (string, error) {
	file, ok := sourceFiles[name]
	if !ok {
		return "", fmt.Errorf("unknown contract %s", name)
	}
	content, err := fs.ReadFile(Sources(), file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(content), nil
}

// GetArtifact compiles the named contract on first use and caches the result for the
// lifetime of the process.
func GetArtifact(name string) (*Artifact, error) {
	artifactsMu.Lock()
	defer artifactsMu.Unlock()

	if artifact, ok := artifacts[name]; ok {
		return artifact, nil
	}

	source, err := Source(name)
	if err != nil {
		return nil, err
	}

	result, err := utils.CompileSolidity(CompilerVersion, source, Sources())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", name, err)
	}

	bytecode, exists := result.Bytecode[name]
	if !exists || bytecode == "" {
		return nil, fmt.Errorf("contract %s not found in compilation result", name)
	}
	abiData, exists := result.Abi[name]
	if !exists {
		return nil, fmt.Errorf("ABI for contract %s not found", name)
	}

	abiBytes, err := json.Marshal(abiData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ABI: %w", err)
	}
	parsedABI, err := abi.JSON(strings.NewReader(string(abiBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	artifact := &Artifact{
		Name:     name,
		ABI:      parsedABI,
		ABIJSON:  string(abiBytes),
		Bytecode: common.FromHex(bytecode),
		Source:   source,
	}
	artifacts[name] = artifact
	return artifact, nil
}

// StandardJSONInput returns the compiler input used for source verification of name.
func StandardJSONInput(name string) (string, error) {
	source, err := Source(name)
	if err != nil {
		return "", err
	}
	return utils.StandardJSONInput(source, Sources())
}

// QualifiedName is the "file:contract" form verification services expect.
func QualifiedName(name string) string {
	return utils.MainSourceName + ":" + name
}
