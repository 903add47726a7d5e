package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/chain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/collections"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

const (
	testWallet = "0x32e75870fB68372d703ED6867cF6A1E52C4769EE"
	userWallet = "0x2222222222222222222222222222222222222222"
	payHash    = "0x9f1c2b7e4d3a5b6c7d8e9f0a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e"
)

type fixture struct {
	chain      *chain.MockChain
	directory  *collections.Directory
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := chain.NewMockChain()
	dir := collections.NewDirectory(collections.NewMemoryStore(), mock)
	lp := &Launchpad{
		Directory:        dir,
		Verifier:         mock,
		Minter:           mock,
		AgentWallet:      testWallet,
		DeploymentFeeETH: 0.01,
		ExplorerURL:      "https://sepolia.basescan.org",
	}
	r := NewRegistry()
	require.NoError(t, lp.Register(r))
	return &fixture{chain: mock, directory: dir, dispatcher: NewDispatcher(r, nil)}
}

func (f *fixture) run(t *testing.T, name ToolName, args any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	res, err := f.dispatcher.Dispatch(context.Background(), call("call_1", string(name), string(raw)))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Payload), &payload), res.Payload)
	return payload
}

func TestLaunchpadToolSchemas(t *testing.T) {
	f := newFixture(t)
	defs := f.dispatcher.Definitions()
	require.Len(t, defs, 5)

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Function.Name
		assert.True(t, json.Valid(d.Function.Parameters))
	}
	assert.Equal(t, []string{
		"check_collection_availability",
		"get_payment_instructions",
		"verify_payment_and_mint_nft",
		"get_deployment_instructions",
		"verify_deployment_payment_and_deploy",
	}, names)
}

func TestCheckCollectionAvailability(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, CheckCollectionAvailability, CollectionArgs{CollectionName: "aspro"})
	assert.Equal(t, "ASPRO", p["name"])
	assert.Equal(t, true, p["is_free_mint"])
	assert.Equal(t, 0.005, p["total_eth"])

	p = f.run(t, CheckCollectionAvailability, CollectionArgs{CollectionName: "Bored Apes"})
	assert.Contains(t, p["error"], "not found")
}

func TestGetPaymentInstructions(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, GetPaymentInstructions, CollectionArgs{CollectionName: "CyberPunks"})
	assert.Equal(t, 0.105, p["total_eth"])
	assert.Equal(t, testWallet, p["send_to_wallet"])
	assert.Contains(t, p["instructions"], testWallet)

	p = f.run(t, GetPaymentInstructions, CollectionArgs{CollectionName: "nothing"})
	assert.Contains(t, p["error"], "not found")
}

func TestVerifyPaymentAndMint(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyPaymentAndMintNFT, MintArgs{TransactionHash: payHash, UserWalletAddress: userWallet, CollectionName: "ASPRO"})
	assert.Equal(t, true, p["success"], p)
	assert.NotEmpty(t, p["mint_transaction_hash"])

	require.Len(t, f.chain.Mints(), 1)
	assert.Equal(t, userWallet, f.chain.Mints()[0].Recipient)
	// a free mint only has to cover gas
	assert.Equal(t, 0.005, p["verification"].(map[string]any)["expected_eth"])
}

func TestVerifyPaymentWrongRecipientNeverMints(t *testing.T) {
	f := newFixture(t)
	f.chain.SetVerification(payHash, domain.VerificationWrongRecipient, "sent to someone else")

	p := f.run(t, VerifyPaymentAndMintNFT, MintArgs{TransactionHash: payHash, UserWalletAddress: userWallet, CollectionName: "ASPRO"})
	assert.Contains(t, p["error"], "sent to someone else")
	assert.Equal(t, "wrong_recipient", p["verification"].(map[string]any)["status"])
	assert.Empty(t, f.chain.Mints())
}

func TestVerifyPaymentUnknownCollectionNeverVerifies(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyPaymentAndMintNFT, MintArgs{TransactionHash: payHash, UserWalletAddress: userWallet, CollectionName: "Nope"})
	assert.Contains(t, p["error"], "not found")
	assert.Empty(t, f.chain.VerifyCalls())
}

func TestMintPlaceholderContractFails(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyPaymentAndMintNFT, MintArgs{TransactionHash: payHash, UserWalletAddress: userWallet, CollectionName: "CyberPunks"})
	assert.Contains(t, p["error"], "no real contract deployed")
	assert.Empty(t, f.chain.Mints())
}

func TestGetDeploymentInstructions(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, GetDeploymentInstructions, struct{}{})
	assert.Equal(t, 0.01, p["deployment_fee_eth"])
	assert.Equal(t, testWallet, p["send_to_wallet"])
}

func TestVerifyDeploymentAndDeploy(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash,
		"collection_name":  "Moon Cats",
		"symbol":           "mcat",
		"price_eth":        0.02,
		"supply":           "500",
		"description":      "Cats on the moon",
	})
	require.Equal(t, true, p["success"], p)
	addr := p["contract_address"].(string)
	assert.Equal(t, "https://sepolia.basescan.org/address/"+addr, p["basescan_url"])
	assert.Contains(t, p["message"], "MCAT")

	c, err := f.directory.Lookup(context.Background(), "MOON CATS")
	require.NoError(t, err)
	assert.Equal(t, addr, c.ContractAddress)
	assert.Equal(t, domain.Supply("500"), c.Supply)
	assert.Equal(t, []string{payHash}, f.chain.VerifyCalls())
}

func TestVerifyDeploymentFeeFailureNeverDeploys(t *testing.T) {
	f := newFixture(t)
	f.chain.SetVerification(payHash, domain.VerificationInsufficientFunds, "Insufficient funds sent.")

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash, "collection_name": "Moon Cats", "symbol": "MCAT",
		"price_eth": 0.02, "supply": 500, "description": "x",
	})
	assert.Contains(t, p["error"], "Deployment fee not confirmed")
	assert.Empty(t, f.chain.Deploys())

	_, err := f.directory.Lookup(context.Background(), "Moon Cats")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestVerifyDeploymentDuplicate(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash, "collection_name": "Aspro", "symbol": "ASP",
		"price_eth": 0, "supply": 0, "description": "copycat",
	})
	assert.Contains(t, p["error"], "already exists")
	assert.Empty(t, f.chain.Deploys())
}

func TestVerifyDeploymentContractFailure(t *testing.T) {
	f := newFixture(t)
	f.chain.FailDeploy(errors.New("out of gas"))

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash, "collection_name": "Doomed", "symbol": "DMD",
		"price_eth": 0.1, "supply": 10, "description": "x",
	})
	assert.Equal(t, "Smart contract deployment failed: out of gas", p["error"])
}

func TestVerifyDeploymentBadNumbers(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash, "collection_name": "Odd", "symbol": "ODD",
		"price_eth": "free", "supply": 10, "description": "x",
	})
	assert.NotEmpty(t, p["error"])
	assert.Empty(t, f.chain.VerifyCalls())
}

func TestVerifyDeploymentNegativeNumbers(t *testing.T) {
	tests := []struct {
		name  string
		price any
		sup   any
		want  string
	}{
		{"negative price number", -0.5, 10, "price_eth must not be negative"},
		{"negative price string", "-5", "10", "price_eth must not be negative"},
		{"negative supply number", 0.1, -1, "supply must not be negative"},
		{"negative supply string", "0.1", "-3", "supply must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
				"transaction_hash": payHash, "collection_name": "Negative", "symbol": "NEG",
				"price_eth": tt.price, "supply": tt.sup, "description": "x",
			})
			assert.Equal(t, tt.want, p["error"])
			assert.Empty(t, f.chain.VerifyCalls())
			assert.Empty(t, f.chain.Deploys())
		})
	}
}

func TestVerifyDeploymentZeroSupplyIsUnlimited(t *testing.T) {
	f := newFixture(t)

	p := f.run(t, VerifyDeploymentPaymentAndDeploy, map[string]any{
		"transaction_hash": payHash, "collection_name": "Endless", "symbol": "END",
		"price_eth": "0", "supply": "0", "description": "x",
	})
	require.Equal(t, true, p["success"], p)

	c, err := f.directory.Lookup(context.Background(), "Endless")
	require.NoError(t, err)
	assert.True(t, c.IsFreeMint)
	assert.Equal(t, domain.SupplyOf(0), c.Supply)
}
