package core

import "time"

// Timeout defaults for icon operations
const (
	DefaultIconTimeout     = 10 * time.Second
	DefaultDiscoverTimeout = 10 * time.Second
)

// Resource limits
const (
	MaxDiscoverPageSize = 5 * 1024 * 1024 // 5MB
)

// Batch sizes for icon sync runs. Execute mode stays small to bound
// concurrent outbound connections; analyze mode does no I/O.
const (
	SyncBatchSize    = 5
	AnalyzeBatchSize = 50
)

// HTTP client configuration. Some favicon providers reject default
// Go client identifiers, so a realistic browser user agent is sent.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Filesystem and URL layout for cached icons
const (
	DefaultIconsDir  = "public/uploads/icons"
	IconPublicPrefix = "/uploads/icons/"
)
