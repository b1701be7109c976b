package execution

// CalculateOverallSuccess reduces signals to a single verdict.
//
// Any failure signal makes the verdict a failure, with the strongest failure
// confidence. Otherwise the verdict is a success with the mean confidence of
// the positive signals. Without signals the verdict is (false, 0): no
// evidence of success exists.
func CalculateOverallSuccess(signals []Signal) Verdict {
	var (
		failed     bool
		maxFailure float64
		positives  int
		sumSuccess float64
	)
	for _, s := range signals {
		switch {
		case s.Type.IsNegative():
			failed = true
			maxFailure = max(maxFailure, s.Confidence)
		case s.Type.IsPositive():
			positives++
			sumSuccess += s.Confidence
		}
	}

	switch {
	case failed:
		return Verdict{Success: false, Confidence: maxFailure}
	case positives > 0:
		return Verdict{Success: true, Confidence: sumSuccess / float64(positives)}
	default:
		return Verdict{}
	}
}

// Partition splits signals into failures and successes, preserving order.
func Partition(signals []Signal) (failures, successes []Signal) {
	for _, s := range signals {
		if s.Type.IsNegative() {
			failures = append(failures, s)
		} else if s.Type.IsPositive() {
			successes = append(successes, s)
		}
	}
	return failures, successes
}
