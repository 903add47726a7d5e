package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	ABI      abi.ABI
	Bytecode []byte
}

type artifactFile struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode string          `json:"bytecode"`
}

// LoadArtifact reads a {"abi": [...], "bytecode": "0x..."} file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract artifact: %w", err)
	}
	var raw artifactFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse contract artifact %s: %w", path, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	code := common.FromHex(raw.Bytecode)
	if len(code) == 0 {
		return nil, fmt.Errorf("contract artifact %s has no bytecode", path)
	}
	return &Artifact{ABI: parsed, Bytecode: code}, nil
}

// LoadABI reads a bare ABI array, as used for the mint entry point.
func LoadABI(path string) (abi.ABI, error) {
	f, err := os.Open(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("read abi: %w", err)
	}
	defer f.Close()

	parsed, err := abi.JSON(f)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi %s: %w", path, err)
	}
	if _, ok := parsed.Methods["mint"]; !ok {
		return abi.ABI{}, fmt.Errorf("abi %s has no mint method", path)
	}
	return parsed, nil
}
