package chain

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/params"
)

var weiPerEther = new(big.Int).SetUint64(params.Ether)

// EthToWei converts an ETH amount to wei using its shortest decimal form,
// so 0.1 becomes exactly 10^17 wei.
func EthToWei(eth float64) *big.Int {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(eth, 'f', -1, 64))
	if !ok {
		return new(big.Int)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	return new(big.Int).Quo(r.Num(), r.Denom())
}

// WeiToEth converts wei to an ETH amount for display.
func WeiToEth(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(wei, weiPerEther).Float64()
	return f
}
