package config

const (
	DefaultAPIBaseURL       = "http://localhost:8000"
	DefaultAPITimeoutMS     = 15000
	DefaultAPIRatePerSecond = 5
	DefaultAPIBurst         = 5

	DefaultCacheTTLSeconds = 300
)
