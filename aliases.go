package casspark

import "github.com/arloliu/casspark/types"

// Type aliases for convenience - re-export from types package.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	TestStatus       = types.TestStatus
)

// Re-export test status constants for convenience.
const (
	StatusPassed  = types.StatusPassed
	StatusFailed  = types.StatusFailed
	StatusSkipped = types.StatusSkipped
)
