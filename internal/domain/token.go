package domain

// Production token and quota parameters.
const (
	TokenSymbol   = "SOLAY39"
	TokenMint     = "P7rFSsngQyDaJb3fqDP49XJBz2qLnVkLxdD9yt4Yray"
	TokenDecimals = 6

	// DailyLimit caps the total reward a wallet can receive per UTC day.
	DailyLimit = 2000.0

	// MinHold is the minimum token balance required to mine.
	MinHold = 1.0
)
