package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/chain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// CollectionDirectory is the part of the collection directory tools use.
type CollectionDirectory interface {
	Lookup(ctx context.Context, name string) (domain.Collection, error)
	Register(ctx context.Context, nc domain.NewCollection) (domain.Registration, error)
}

// Launchpad implements the mint and deploy tools.
type Launchpad struct {
	Directory        CollectionDirectory
	Verifier         chain.PaymentVerifier
	Minter           chain.Minter
	AgentWallet      string
	DeploymentFeeETH float64
	ExplorerURL      string
}

// CollectionArgs names a collection.
type CollectionArgs struct {
	CollectionName string `json:"collection_name"`
}

// MintArgs are the arguments of verify_payment_and_mint_nft.
type MintArgs struct {
	TransactionHash   string `json:"transaction_hash"`
	UserWalletAddress string `json:"user_wallet_address"`
	CollectionName    string `json:"collection_name"`
}

// DeployArgs are the arguments of verify_deployment_payment_and_deploy.
// Numbers may arrive as JSON numbers or numeric strings.
type DeployArgs struct {
	TransactionHash string      `json:"transaction_hash"`
	CollectionName  string      `json:"collection_name"`
	Symbol          string      `json:"symbol"`
	PriceETH        json.Number `json:"price_eth"`
	Supply          json.Number `json:"supply"`
	Description     string      `json:"description"`
}

// CollectionResult is a found collection plus its total mint cost.
type CollectionResult struct {
	domain.Collection
	TotalETH float64 `json:"total_eth"`
}

// PaymentInstructions tells the user what to send for a mint.
type PaymentInstructions struct {
	Collection     string  `json:"collection"`
	PriceETH       float64 `json:"price_eth"`
	GasEstimateETH float64 `json:"gas_estimate_eth"`
	TotalETH       float64 `json:"total_eth"`
	IsFreeMint     bool    `json:"is_free_mint"`
	SendToWallet   string  `json:"send_to_wallet"`
	Instructions   string  `json:"instructions"`
}

// MintResult is a verified and submitted mint.
type MintResult struct {
	Success             bool                `json:"success"`
	Message             string              `json:"message"`
	MintTransactionHash string              `json:"mint_transaction_hash"`
	Verification        domain.Verification `json:"verification"`
}

// DeploymentInstructions tells the user what to send for a deployment.
type DeploymentInstructions struct {
	DeploymentFeeETH float64 `json:"deployment_fee_eth"`
	SendToWallet     string  `json:"send_to_wallet"`
	Instructions     string  `json:"instructions"`
}

// DeployResult is a deployed and registered collection.
type DeployResult struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	ContractAddress string            `json:"contract_address"`
	DeployTxHash    string            `json:"deploy_tx_hash"`
	ExplorerURL     string            `json:"basescan_url"`
	Collection      domain.Collection `json:"collection"`
}

// Tools returns the launchpad tools in the order they are offered.
func (l *Launchpad) Tools() []Tool {
	return []Tool{
		{
			Name:        CheckCollectionAvailability,
			Description: "Use this to check if an NFT collection exists and get its mint price.",
			Parameters:  collectionNameSchema,
			Exec:        Typed(l.checkAvailability),
		},
		{
			Name:        GetPaymentInstructions,
			Description: "Use this to tell the user exactly how much ETH to send and to what address.",
			Parameters:  collectionNameSchema,
			Exec:        Typed(l.paymentInstructions),
		},
		{
			Name:        VerifyPaymentAndMintNFT,
			Description: "Use this ONLY AFTER the user gives you a transaction hash for their MINT payment. It checks the blockchain to verify payment and mints the NFT.",
			Parameters:  mintSchema,
			Exec:        Typed(l.verifyAndMint),
		},
		{
			Name:        GetDeploymentInstructions,
			Description: "Call this when a user wants to deploy a new collection. Returns the required deployment fee and the wallet address to send it to.",
			Parameters:  emptySchema,
			Exec:        Typed(l.deploymentInstructions),
		},
		{
			Name:        VerifyDeploymentPaymentAndDeploy,
			Description: "Call this ONLY after the user has paid the deployment fee AND provided their transaction hash. Verifies payment and deploys the NFT collection smart contract.",
			Parameters:  deploySchema,
			Exec:        Typed(l.verifyAndDeploy),
		},
	}
}

// Register adds every launchpad tool to r.
func (l *Launchpad) Register(r *Registry) error {
	for _, t := range l.Tools() {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// lookup returns the collection, or a ready-made error payload when the
// name is missing or unknown.
func (l *Launchpad) lookup(ctx context.Context, name string) (domain.Collection, json.RawMessage, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Collection{}, errorPayload("collection_name is required", nil), nil
	}
	c, err := l.Directory.Lookup(ctx, name)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		return domain.Collection{}, errorPayload(fmt.Sprintf("Collection '%s' not found on this launchpad.", strings.TrimSpace(name)), nil), nil
	}
	if err != nil {
		return domain.Collection{}, nil, err
	}
	return c, nil, nil
}

func (l *Launchpad) checkAvailability(ctx context.Context, args CollectionArgs) (any, error) {
	c, failure, err := l.lookup(ctx, args.CollectionName)
	if failure != nil || err != nil {
		return failure, err
	}
	return CollectionResult{Collection: c, TotalETH: c.TotalETH()}, nil
}

func (l *Launchpad) paymentInstructions(ctx context.Context, args CollectionArgs) (any, error) {
	c, failure, err := l.lookup(ctx, args.CollectionName)
	if failure != nil || err != nil {
		return failure, err
	}
	return PaymentInstructions{
		Collection:     c.Name,
		PriceETH:       c.PriceETH,
		GasEstimateETH: c.GasEstimateETH,
		TotalETH:       c.TotalETH(),
		IsFreeMint:     c.IsFreeMint,
		SendToWallet:   l.AgentWallet,
		Instructions: fmt.Sprintf(
			"To mint a '%s' NFT, send a total of %v ETH (Mint price: %v ETH + Gas: %v ETH) to the launchpad wallet address: %s. "+
				"Then provide the transaction hash AND your Ethereum wallet address to receive the NFT.",
			c.Name, c.TotalETH(), c.PriceETH, c.GasEstimateETH, l.AgentWallet),
	}, nil
}

func (l *Launchpad) verifyAndMint(ctx context.Context, args MintArgs) (any, error) {
	if args.TransactionHash == "" || args.UserWalletAddress == "" {
		return errorPayload("transaction_hash and user_wallet_address are required", nil), nil
	}
	c, failure, err := l.lookup(ctx, args.CollectionName)
	if failure != nil || err != nil {
		return failure, err
	}

	v := l.Verifier.Verify(ctx, args.TransactionHash, c.ExpectedPaymentETH())
	if !v.OK() {
		return errorPayload("Payment verification failed: "+v.Message, v), nil
	}

	receipt, err := l.Minter.Mint(ctx, domain.MintRequest{Collection: c, Recipient: args.UserWalletAddress})
	if err != nil {
		return errorPayload("Minting failed: "+unwrapMessage(err), v), nil
	}

	return MintResult{
		Success:             true,
		Message:             receipt.Message,
		MintTransactionHash: receipt.TxHash,
		Verification:        v,
	}, nil
}

func (l *Launchpad) deploymentInstructions(ctx context.Context, _ struct{}) (any, error) {
	return DeploymentInstructions{
		DeploymentFeeETH: l.DeploymentFeeETH,
		SendToWallet:     l.AgentWallet,
		Instructions: fmt.Sprintf(
			"To deploy your collection, please send %v ETH to %s on Base Sepolia. Then share your transaction hash with me along with all collection details.",
			l.DeploymentFeeETH, l.AgentWallet),
	}, nil
}

func (l *Launchpad) verifyAndDeploy(ctx context.Context, args DeployArgs) (any, error) {
	name := strings.TrimSpace(args.CollectionName)
	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if args.TransactionHash == "" || name == "" || symbol == "" {
		return errorPayload("transaction_hash, collection_name and symbol are required", nil), nil
	}
	price, supply, err := parseDeployNumbers(args)
	if err != nil {
		return errorPayload(err.Error(), nil), nil
	}

	v := l.Verifier.Verify(ctx, args.TransactionHash, l.DeploymentFeeETH)
	if !v.OK() {
		return errorPayload("Deployment fee not confirmed: "+v.Message, v), nil
	}

	reg, err := l.Directory.Register(ctx, domain.NewCollection{
		Name:        name,
		Symbol:      symbol,
		PriceETH:    price,
		Supply:      supply,
		Description: args.Description,
	})
	var depErr *domain.DeploymentError
	switch {
	case errors.Is(err, domain.ErrDuplicateCollection):
		return errorPayload(fmt.Sprintf("Collection '%s' already exists on this launchpad!", name), nil), nil
	case errors.As(err, &depErr):
		return errorPayload("Smart contract deployment failed: "+unwrapMessage(depErr), nil), nil
	case err != nil:
		return nil, err
	}

	addr := reg.Collection.ContractAddress
	return DeployResult{
		Success:         true,
		Message:         fmt.Sprintf("🚀 Collection '%s' (%s) has been successfully deployed to Base Sepolia!", reg.Collection.Name, reg.Collection.Symbol),
		ContractAddress: addr,
		DeployTxHash:    reg.TxHash,
		ExplorerURL:     strings.TrimSuffix(l.ExplorerURL, "/") + "/address/" + addr,
		Collection:      reg.Collection,
	}, nil
}

// parseDeployNumbers reads price and supply, which may arrive as JSON numbers
// or numeric strings. A zero supply means unlimited; negatives are rejected.
func parseDeployNumbers(args DeployArgs) (float64, int64, error) {
	var price float64
	if args.PriceETH != "" {
		p, err := strconv.ParseFloat(strings.TrimSpace(args.PriceETH.String()), 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, 0, fmt.Errorf("price_eth must be a number")
		}
		price = p
	}
	if price < 0 {
		return 0, 0, fmt.Errorf("price_eth must not be negative")
	}

	var supply int64
	if args.Supply != "" {
		raw := strings.TrimSpace(args.Supply.String())
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			supply = n
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			supply = int64(f)
		} else {
			return 0, 0, fmt.Errorf("supply must be an integer")
		}
	}
	if supply < 0 {
		return 0, 0, fmt.Errorf("supply must not be negative")
	}
	return price, supply, nil
}

// unwrapMessage drops the typed error's own prefix so payloads read cleanly.
func unwrapMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
