package regime

import "errors"

// ErrUnknownThreshold is returned by SetThreshold for any kind outside
// {volatility, spread, imbalance, cancellation}.
var ErrUnknownThreshold = errors.New("unknown regime threshold kind")
