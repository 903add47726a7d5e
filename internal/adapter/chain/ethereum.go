package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

const deployWaitTimeout = 120 * time.Second

// EthereumConfig configures a live chain connection.
type EthereumConfig struct {
	RPCURL       string
	PrivateKey   string
	ChainID      int64
	AgentWallet  string
	ArtifactPath string
	MintABIPath  string
}

// txReader is the read side of an Ethereum node used for verification.
type txReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// EthereumChain verifies, mints and deploys against a JSON-RPC node.
type EthereumChain struct {
	client  *ethclient.Client
	wallet  common.Address
	key     *ecdsa.PrivateKey
	chainID *big.Int

	artifact    *Artifact
	artifactErr error
	mintABI     abi.ABI
	mintABIErr  error
}

// NewEthereumChain dials the RPC node and loads the signing key. Missing
// contract files are reported when deploy or mint is attempted.
func NewEthereumChain(ctx context.Context, cfg EthereumConfig) (*EthereumChain, error) {
	if !common.IsHexAddress(cfg.AgentWallet) {
		return nil, fmt.Errorf("invalid agent wallet %q", cfg.AgentWallet)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse agent private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", cfg.RPCURL, err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("query chain id: %w", err)
		}
	}

	c := &EthereumChain{
		client:  client,
		wallet:  common.HexToAddress(cfg.AgentWallet),
		key:     key,
		chainID: chainID,
	}
	c.artifact, c.artifactErr = LoadArtifact(cfg.ArtifactPath)
	c.mintABI, c.mintABIErr = LoadABI(cfg.MintABIPath)

	slog.Info("chain connected",
		"rpc", cfg.RPCURL,
		"chain_id", chainID.String(),
		"signer", crypto.PubkeyToAddress(key.PublicKey).Hex())
	return c, nil
}

// Close releases the RPC connection.
func (c *EthereumChain) Close() {
	c.client.Close()
}

// Verify checks the recipient, amount and receipt status of txHash.
func (c *EthereumChain) Verify(ctx context.Context, txHash string, expectedETH float64) domain.Verification {
	return verifyPayment(ctx, c.client, c.wallet, txHash, expectedETH)
}

func verifyPayment(ctx context.Context, r txReader, wallet common.Address, txHash string, expectedETH float64) domain.Verification {
	v := domain.Verification{TxHash: txHash, ExpectedETH: expectedETH}

	hashBytes, err := hexutil.Decode(strings.TrimSpace(txHash))
	if err != nil || len(hashBytes) != common.HashLength {
		v.Status = domain.VerificationNotConfirmed
		v.Message = fmt.Sprintf("Verification Failed: %q is not a transaction hash. Please send the 0x-prefixed 66-character hash of your payment.", txHash)
		return v
	}
	hash := common.BytesToHash(hashBytes)

	tx, pending, err := r.TransactionByHash(ctx, hash)
	switch {
	case errors.Is(err, ethereum.NotFound):
		v.Status = domain.VerificationNotConfirmed
		v.Message = "Verification Failed: The transaction was not found on chain."
		return v
	case err != nil:
		v.Status = domain.VerificationRPCError
		v.Message = fmt.Sprintf("Error verifying transaction: %v", err)
		return v
	case pending:
		v.Status = domain.VerificationNotConfirmed
		v.Message = "Verification Failed: The transaction is still pending."
		return v
	}

	if tx.To() == nil || *tx.To() != wallet {
		to := "contract creation"
		if tx.To() != nil {
			to = tx.To().Hex()
		}
		v.Status = domain.VerificationWrongRecipient
		v.Recipient = to
		v.Message = fmt.Sprintf("Verification Failed: Transaction was sent to %s, not the launchpad address (%s).", to, wallet.Hex())
		return v
	}
	v.Recipient = tx.To().Hex()
	v.ReceivedETH = WeiToEth(tx.Value())

	if tx.Value().Cmp(EthToWei(expectedETH)) < 0 {
		v.Status = domain.VerificationInsufficientFunds
		v.Message = fmt.Sprintf("Verification Failed: Insufficient funds sent. Expected %v ETH, but received %v ETH.", expectedETH, v.ReceivedETH)
		return v
	}

	receipt, err := r.TransactionReceipt(ctx, hash)
	switch {
	case errors.Is(err, ethereum.NotFound):
		v.Status = domain.VerificationNotConfirmed
		v.Message = "Verification Failed: The transaction failed on-chain or is still pending."
		return v
	case err != nil:
		v.Status = domain.VerificationRPCError
		v.Message = fmt.Sprintf("Error verifying transaction: %v", err)
		return v
	case receipt.Status != types.ReceiptStatusSuccessful:
		v.Status = domain.VerificationNotConfirmed
		v.Message = "Verification Failed: The transaction failed on-chain or is still pending."
		return v
	}

	v.Status = domain.VerificationSuccess
	v.Message = "Verification Successful: Payment confirmed!"
	return v
}

// Mint sends mint(recipient) to the collection contract. It does not wait
// for the transaction to be mined.
func (c *EthereumChain) Mint(ctx context.Context, req domain.MintRequest) (domain.MintReceipt, error) {
	if err := checkMintable(req); err != nil {
		return domain.MintReceipt{}, err
	}
	if c.mintABIErr != nil {
		return domain.MintReceipt{}, &domain.MintError{Collection: req.Collection.Name, Err: c.mintABIErr}
	}

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return domain.MintReceipt{}, &domain.MintError{Collection: req.Collection.Name, Err: err}
	}

	contract := bind.NewBoundContract(common.HexToAddress(req.Collection.ContractAddress), c.mintABI, c.client, c.client, c.client)
	tx, err := contract.Transact(opts, "mint", common.HexToAddress(req.Recipient))
	if err != nil {
		return domain.MintReceipt{}, &domain.MintError{Collection: req.Collection.Name, Err: err}
	}

	slog.Info("mint submitted", "collection", req.Collection.Name, "tx", tx.Hash().Hex())
	return domain.MintReceipt{TxHash: tx.Hash().Hex(), Message: mintMessage(req)}, nil
}

// Deploy creates a new collection contract with constructor (name, symbol)
// and waits for it to be mined.
func (c *EthereumChain) Deploy(ctx context.Context, req domain.DeployRequest) (domain.DeployReceipt, error) {
	if c.artifactErr != nil {
		return domain.DeployReceipt{}, &domain.DeploymentError{Name: req.Name, Err: c.artifactErr}
	}

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return domain.DeployReceipt{}, &domain.DeploymentError{Name: req.Name, Err: err}
	}

	_, tx, _, err := bind.DeployContract(opts, c.artifact.ABI, c.artifact.Bytecode, c.client, req.Name, req.Symbol)
	if err != nil {
		return domain.DeployReceipt{}, &domain.DeploymentError{Name: req.Name, Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, deployWaitTimeout)
	defer cancel()

	addr, err := bind.WaitDeployed(waitCtx, c.client, tx)
	if err != nil {
		return domain.DeployReceipt{}, &domain.DeploymentError{Name: req.Name, Err: fmt.Errorf("wait for deployment %s: %w", tx.Hash().Hex(), err)}
	}

	slog.Info("collection deployed", "name", req.Name, "address", addr.Hex(), "tx", tx.Hash().Hex())
	return domain.DeployReceipt{ContractAddress: addr.Hex(), TxHash: tx.Hash().Hex()}, nil
}

func (c *EthereumChain) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

var _ Chain = (*EthereumChain)(nil)
