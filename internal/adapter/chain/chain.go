// Package chain adapts blockchain reads and writes for the launchpad tools.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// ErrNoContract is returned when minting a collection without a real contract.
var ErrNoContract = errors.New("no real contract deployed")

// PaymentVerifier checks that a transaction paid the agent wallet.
// Failures are reported in the verdict, never as an error.
type PaymentVerifier interface {
	Verify(ctx context.Context, txHash string, expectedETH float64) domain.Verification
}

// Minter mints one token of a collection to a recipient.
type Minter interface {
	Mint(ctx context.Context, req domain.MintRequest) (domain.MintReceipt, error)
}

// Deployer deploys a new ERC721 collection contract.
type Deployer interface {
	Deploy(ctx context.Context, req domain.DeployRequest) (domain.DeployReceipt, error)
}

// Chain bundles every on-chain capability the launchpad needs.
type Chain interface {
	PaymentVerifier
	Minter
	Deployer
}

// checkMintable rejects mints that can never succeed on chain.
func checkMintable(req domain.MintRequest) error {
	addr := req.Collection.ContractAddress
	if addr == "" || strings.HasPrefix(addr, "0xMock") || !common.IsHexAddress(addr) {
		return &domain.MintError{Collection: req.Collection.Name, Err: fmt.Errorf("%w for %s", ErrNoContract, req.Collection.Name)}
	}
	if !common.IsHexAddress(req.Recipient) {
		return &domain.MintError{Collection: req.Collection.Name, Err: fmt.Errorf("invalid recipient address %q", req.Recipient)}
	}
	return nil
}

func mintMessage(req domain.MintRequest) string {
	return fmt.Sprintf("Successfully minted 1 %s NFT to %s!", req.Collection.Name, req.Recipient)
}
