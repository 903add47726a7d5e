package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// MockPrefix labels every outcome produced by MockChain.
const MockPrefix = "[MOCK] "

// MockChain is an in-memory Chain used when no signing key is configured.
// Every payment verifies unless scripted otherwise; every call is recorded.
type MockChain struct {
	mu sync.Mutex

	verdicts  map[string]domain.Verification
	mintErr   error
	deployErr error

	verifyCalls []string
	mints       []domain.MintRequest
	deploys     []domain.DeployRequest
}

// NewMockChain creates a MockChain.
func NewMockChain() *MockChain {
	return &MockChain{verdicts: make(map[string]domain.Verification)}
}

// SetVerification scripts the verdict returned for txHash.
func (m *MockChain) SetVerification(txHash string, status domain.VerificationStatus, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[txHash] = domain.Verification{Status: status, Message: message, TxHash: txHash}
}

// FailMint makes every subsequent Mint fail with err.
func (m *MockChain) FailMint(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mintErr = err
}

// FailDeploy makes every subsequent Deploy fail with err.
func (m *MockChain) FailDeploy(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deployErr = err
}

func (m *MockChain) Verify(ctx context.Context, txHash string, expectedETH float64) domain.Verification {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls = append(m.verifyCalls, txHash)

	if v, ok := m.verdicts[txHash]; ok {
		v.ExpectedETH = expectedETH
		return v
	}
	return domain.Verification{
		Status:      domain.VerificationSuccess,
		Message:     MockPrefix + "Verification Successful: Payment confirmed!",
		TxHash:      txHash,
		ExpectedETH: expectedETH,
		ReceivedETH: expectedETH,
	}
}

func (m *MockChain) Mint(ctx context.Context, req domain.MintRequest) (domain.MintReceipt, error) {
	if err := checkMintable(req); err != nil {
		return domain.MintReceipt{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mintErr != nil {
		return domain.MintReceipt{}, &domain.MintError{Collection: req.Collection.Name, Err: m.mintErr}
	}
	m.mints = append(m.mints, req)

	hash := fakeHash("mint", req.Collection.ContractAddress, req.Recipient, len(m.mints))
	return domain.MintReceipt{TxHash: hash.Hex(), Message: MockPrefix + mintMessage(req)}, nil
}

func (m *MockChain) Deploy(ctx context.Context, req domain.DeployRequest) (domain.DeployReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deployErr != nil {
		return domain.DeployReceipt{}, &domain.DeploymentError{Name: req.Name, Err: m.deployErr}
	}
	m.deploys = append(m.deploys, req)

	hash := fakeHash("deploy", req.Name, req.Symbol, len(m.deploys))
	addr := common.BytesToAddress(crypto.Keccak256(hash.Bytes()))
	return domain.DeployReceipt{ContractAddress: addr.Hex(), TxHash: hash.Hex()}, nil
}

// VerifyCalls returns the transaction hashes passed to Verify.
func (m *MockChain) VerifyCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.verifyCalls...)
}

// Mints returns the successful mint requests.
func (m *MockChain) Mints() []domain.MintRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MintRequest(nil), m.mints...)
}

// Deploys returns the successful deploy requests.
func (m *MockChain) Deploys() []domain.DeployRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DeployRequest(nil), m.deploys...)
}

func fakeHash(kind, a, b string, n int) common.Hash {
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s:%s:%s:%d", kind, a, b, n)))
}

var _ Chain = (*MockChain)(nil)
