package domain

import (
	"math"
	"strconv"
	"strings"
)

// Supply is a collection's max supply: a decimal count or "unlimited".
type Supply string

const SupplyUnlimited Supply = "unlimited"

// SupplyOf converts a requested supply; zero or negative means unlimited.
func SupplyOf(n int64) Supply {
	if n <= 0 {
		return SupplyUnlimited
	}
	return Supply(strconv.FormatInt(n, 10))
}

// Collection is a launchpad NFT collection record.
type Collection struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol,omitempty"`
	PriceETH        float64 `json:"price_eth"`
	GasEstimateETH  float64 `json:"gas_estimate_eth"`
	IsFreeMint      bool    `json:"is_free_mint"`
	Supply          Supply  `json:"supply"`
	ContractAddress string  `json:"contract_address"`
	DeployTxHash    string  `json:"deploy_tx_hash,omitempty"`
	Description     string  `json:"description"`
}

// CollectionKey is the case-insensitive identity of a collection name.
func CollectionKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the collection's directory key.
func (c Collection) Key() string { return CollectionKey(c.Name) }

// TotalETH is what a user is told to send: mint price plus gas, rounded to
// gwei.
func (c Collection) TotalETH() float64 {
	return math.Round((c.PriceETH+c.GasEstimateETH)*1e9) / 1e9
}

// ExpectedPaymentETH is the minimum amount a mint payment must carry.
// Free mints only cover gas.
func (c Collection) ExpectedPaymentETH() float64 {
	if c.IsFreeMint {
		return c.GasEstimateETH
	}
	return c.PriceETH
}

// NewCollection describes a collection a user asked to deploy.
type NewCollection struct {
	Name        string
	Symbol      string
	PriceETH    float64
	Supply      int64
	Description string
}

// Registration is the result of deploying and registering a collection.
type Registration struct {
	Collection Collection
	TxHash     string
}
