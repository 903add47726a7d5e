// Package tools holds the launchpad tool registry and dispatcher.
package tools

// ToolName identifies a tool exposed to the model.
type ToolName string

const (
	CheckCollectionAvailability      ToolName = "check_collection_availability"
	GetPaymentInstructions           ToolName = "get_payment_instructions"
	VerifyPaymentAndMintNFT          ToolName = "verify_payment_and_mint_nft"
	GetDeploymentInstructions        ToolName = "get_deployment_instructions"
	VerifyDeploymentPaymentAndDeploy ToolName = "verify_deployment_payment_and_deploy"
)

func (n ToolName) String() string { return string(n) }
