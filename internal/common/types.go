// Package common holds the data-carrier types shared by every engine
// variant: orders, trades, and the small enums that describe them.
package common

// Side is which way an order faces the book.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// OrderType selects the admission and matching behaviour of an order.
type OrderType int

const (
	Limit OrderType = iota
	Market
	IOC
	StopLoss
	StopLossMarket
	FOK
	Iceberg
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case IOC:
		return "IOC"
	case StopLoss:
		return "STOP_LOSS"
	case StopLossMarket:
		return "STOP_LOSS_MARKET"
	case FOK:
		return "FOK"
	case Iceberg:
		return "ICEBERG"
	default:
		return "UNKNOWN"
	}
}

// Validity is an order's time-in-force.
type Validity int

const (
	Day Validity = iota
	ValidityIOC
	GTC
	GTD
)

// TradingPhase is the exchange-engine state machine position (C8).
type TradingPhase int

const (
	PreOpen TradingPhase = iota
	Opening
	Continuous
	Closing
	PostClose
	Halted
)

func (p TradingPhase) String() string {
	switch p {
	case PreOpen:
		return "PRE_OPEN"
	case Opening:
		return "OPENING"
	case Continuous:
		return "CONTINUOUS"
	case Closing:
		return "CLOSING"
	case PostClose:
		return "POST_CLOSE"
	case Halted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}

// Regime is the adaptive engine's coarse classification of current
// market behaviour (C5).
type Regime int

const (
	Normal Regime = iota
	HighVolatility
	Illiquid
	Directional
	HighFrequency
)

func (r Regime) String() string {
	switch r {
	case Normal:
		return "NORMAL"
	case HighVolatility:
		return "HIGH_VOLATILITY"
	case Illiquid:
		return "ILLIQUID"
	case Directional:
		return "DIRECTIONAL"
	case HighFrequency:
		return "HIGH_FREQUENCY"
	default:
		return "UNKNOWN"
	}
}

// Discipline is the per-level ordering discipline a regime rebinds
// levels to on a classification change.
type Discipline int

const (
	DisciplineFIFO Discipline = iota
	DisciplineSizeTime
	DisciplineHybrid
)

// DisciplineFor maps a regime to its ordering discipline.
func DisciplineFor(r Regime) Discipline {
	switch r {
	case HighVolatility, Illiquid:
		return DisciplineSizeTime
	case Directional:
		return DisciplineHybrid
	default: // Normal, HighFrequency
		return DisciplineFIFO
	}
}
