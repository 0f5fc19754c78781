package model

// Verdict is a human-friendly classification of an allowable investment.
// Keep these values stable; they are intended for CSV output.
type Verdict string

const (
	VerdictProfitable   Verdict = "PROFITABLE"
	VerdictBreakEven    Verdict = "BREAK_EVEN"
	VerdictUnprofitable Verdict = "UNPROFITABLE"
)

func VerdictFromInvestment(perKW float64) Verdict {
	switch {
	case perKW > 0:
		return VerdictProfitable
	case perKW < 0:
		return VerdictUnprofitable
	default:
		return VerdictBreakEven
	}
}
