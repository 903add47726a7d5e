package domain

// Verification is the verdict on a payment transaction.
type Verification struct {
	Status      VerificationStatus `json:"status"`
	Message     string             `json:"message"`
	TxHash      string             `json:"transaction_hash"`
	ExpectedETH float64            `json:"expected_eth"`
	ReceivedETH float64            `json:"received_eth,omitempty"`
	Recipient   string             `json:"recipient,omitempty"`
}

// OK reports whether the payment was confirmed.
func (v Verification) OK() bool { return v.Status == VerificationSuccess }

// MintRequest asks the minter to mint one token of a collection.
type MintRequest struct {
	Collection Collection
	Recipient  string
}

// MintReceipt is a successful mint.
type MintReceipt struct {
	TxHash  string `json:"mint_transaction_hash"`
	Message string `json:"message"`
}

// DeployRequest asks the deployer to deploy a new ERC721 contract.
type DeployRequest struct {
	Name   string
	Symbol string
}

// DeployReceipt is a successful contract deployment.
type DeployReceipt struct {
	ContractAddress string `json:"contract_address"`
	TxHash          string `json:"deploy_tx_hash"`
}
