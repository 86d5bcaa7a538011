package config

import "time"

// Credit accounting defaults.
const (
	DefaultDailyCreditLimit = 10
	DefaultCreditCost       = 1
)

// Default values
const (
	defaultStoreBackend      = "file"
	defaultGeminiModel       = "gemini-1.5-flash"
	defaultGeminiEndpoint    = "https://generativelanguage.googleapis.com"
	defaultImageEndpoint     = "https://image.pollinations.ai"
	defaultImageModel        = "flux"
	defaultHTTPTimeout       = 120 * time.Second
	defaultStorageQuotaBytes = 5 * 1024 * 1024
	defaultLogLevel          = "info"
)

// appDirName is the directory name used under ~/.config.
const appDirName = "paperart"
