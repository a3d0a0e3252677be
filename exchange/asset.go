package exchange

// Asset is one tradable instrument priced in the reference currency.
// Records are mutated in place by price refreshes and never deleted.
type Asset struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"currentPrice"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	MarketCap      float64 `json:"marketCap"`
	Supply         float64 `json:"supply"`
}

// defaultAssets is the exchange catalogue with its reference prices.
func defaultAssets() []*Asset {
	return []*Asset{
		{Symbol: "BTC", Name: "Bitcoin", CurrentPrice: 2485321, PriceChange24h: 5.2, Volume24h: 28500000000, MarketCap: 48500000000000, Supply: 19500000},
		{Symbol: "ETH", Name: "Ethereum", CurrentPrice: 186432, PriceChange24h: 3.1, Volume24h: 12800000000, MarketCap: 22400000000000, Supply: 120280000},
		{Symbol: "USDT", Name: "Tether", CurrentPrice: 91.35, PriceChange24h: -0.1, Volume24h: 45200000000, MarketCap: 87600000000000, Supply: 95800000000},
		{Symbol: "BNB", Name: "Binance Coin", CurrentPrice: 24876, PriceChange24h: 2.8, Volume24h: 890000000, MarketCap: 3890000000000, Supply: 156400000},
		{Symbol: "ADA", Name: "Cardano", CurrentPrice: 38.42, PriceChange24h: -1.5, Volume24h: 456000000, MarketCap: 1320000000000, Supply: 34380000000},
	}
}
