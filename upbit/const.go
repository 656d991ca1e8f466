package upbit

const DefaultHost = "https://api.upbit.com"

const (
	KRW = "KRW"

	KRW_BTC = "KRW-BTC"
	KRW_ETH = "KRW-ETH"
	KRW_XRP = "KRW-XRP"
)

// MinOrderTotal is the minimum order value accepted by Upbit, in KRW.
// Positions worth less than this are residual dust.
const MinOrderTotal = 5000

const (
	SideBuy  = "bid"
	SideSell = "ask"

	// market buy spends a fixed KRW total
	OrdTypePrice = "price"
	// market sell liquidates a fixed volume
	OrdTypeMarket = "market"
)
