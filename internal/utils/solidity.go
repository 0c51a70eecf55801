package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/rxtech-lab/solc-go"
)

// MainSourceName is the unit name the entry source is compiled under.
const MainSourceName = "contract.sol"

var importPattern = regexp.MustCompile(`(?m)^\s*import\s+(?:\{[^}]*\}\s+from\s+)?"([^"]+)"\s*;`)

type CompilationResult struct {
	Bytecode map[string]string
	Abi      map[string]any
}

// CompileSolidity compiles code as contract.sol. Imports are resolved against sources,
// which may be nil when the code is self contained.
func CompileSolidity(version string, code string, sources fs.FS) (CompilationResult, error) {
	compiler, err := solc.NewWithVersion(version)
	if err != nil {
		return CompilationResult{}, err
	}

	opts := solc.CompileOptions{
		ImportCallback: func(u string) solc.ImportResult {
			if sources == nil {
				return solc.ImportResult{
					Error: fmt.Sprintf("Import %s not found", u),
				}
			}

			content, err := fs.ReadFile(sources, importPath(u))
			if err != nil {
				return solc.ImportResult{
					Error: fmt.Sprintf("Import %s not found: %v", u, err),
				}
			}

			return solc.ImportResult{
				Contents: string(content),
			}
		},
	}
	result, err := compiler.CompileWithOptions(&solc.Input{
		Language: "Solidity",
		Sources: map[string]solc.SourceIn{
			MainSourceName: {
				Content: code,
			},
		},
		Settings: solc.Settings{
			OutputSelection: map[string]map[string][]string{
				"*": {
					"*": []string{"abi", "evm.bytecode"},
				},
			},
		},
	}, &opts)
	if err != nil {
		return CompilationResult{}, err
	}

	if len(result.Errors) > 0 {
		return CompilationResult{}, errors.New(fmt.Sprintf("compilation errors: %v", result.Errors))
	}

	bytecodeMap := make(map[string]string)
	abiMap := make(map[string]any)

	for fileName, contract := range result.Contracts {
		if fileName != MainSourceName {
			continue
		}
		for contractName, contract := range contract {
			bytecodeMap[contractName] = contract.EVM.Bytecode.Object
			abiMap[contractName] = contract.ABI
		}
	}

	return CompilationResult{
		Bytecode: bytecodeMap,
		Abi:      abiMap,
	}, nil
}

type standardJSONSource struct {
	Content string `json:"content"`
}

type standardJSONInput struct {
	Language string                        `json:"language"`
	Sources  map[string]standardJSONSource `json:"sources"`
	Settings map[string]any                `json:"settings"`
}

// StandardJSONInput renders the solc standard-json input that reproduces CompileSolidity's
// bytecode. Only the files reachable from code through imports are included.
func StandardJSONInput(code string, sources fs.FS) (string, error) {
	input := standardJSONInput{
		Language: "Solidity",
		Sources: map[string]standardJSONSource{
			MainSourceName: {Content: code},
		},
		Settings: map[string]any{
			"outputSelection": map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode"}},
			},
		},
	}

	pending := SolidityImports(code)
	for len(pending) > 0 {
		name := importPath(pending[0])
		pending = pending[1:]
		if _, seen := input.Sources[name]; seen {
			continue
		}
		if sources == nil {
			return "", fmt.Errorf("import %s cannot be resolved without sources", name)
		}
		content, err := fs.ReadFile(sources, name)
		if err != nil {
			return "", fmt.Errorf("failed to read import %s: %w", name, err)
		}
		input.Sources[name] = standardJSONSource{Content: string(content)}
		pending = append(pending, SolidityImports(string(content))...)
	}

	encoded, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal standard json input: %w", err)
	}
	return string(encoded), nil
}

// SolidityImports lists the import paths of a source file in declaration order.
func SolidityImports(code string) []string {
	var imports []string
	for _, match := range importPattern.FindAllStringSubmatch(code, -1) {
		imports = append(imports, match[1])
	}
	return imports
}

func importPath(u string) string {
	return path.Clean(strings.TrimPrefix(u, "./"))
}
