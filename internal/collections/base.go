package collections

import "github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"

// BaseCollections returns the collections every launchpad starts with.
func BaseCollections() []domain.Collection {
	return []domain.Collection{
		{
			Name:            "ASPRO",
			Symbol:          "ASPRO",
			PriceETH:        0.0,
			GasEstimateETH:  0.005,
			IsFreeMint:      true,
			Supply:          domain.SupplyUnlimited,
			ContractAddress: "0x064776eA68Cd90d62e85e5a8151b63EfcB16F029",
			Description:     "Exclusive free mint for early launchpad testers. Unlimited supply!",
		},
		{
			Name:            "CyberPunks",
			Symbol:          "PUNK",
			PriceETH:        0.1,
			GasEstimateETH:  0.005,
			IsFreeMint:      false,
			Supply:          "10000",
			ContractAddress: "0xMockCyberPunksContractAddress",
			Description:     "A popular premium profile picture collection.",
		},
	}
}
