package services

// DelayDecision is the outcome of comparing a measured delay with the
// delivery's threshold.
type DelayDecision struct {
	DelayMinutes     int  `json:"delayMinutes"`
	ThresholdMinutes int  `json:"thresholdMinutes"`
	ShouldNotify     bool `json:"shouldNotify"`
}

// EvaluateDelay reports whether the customer should be notified. A delay
// equal to the threshold notifies.
//
// Example:
//
//	decision := services.EvaluateDelay(45, 30)
//	if decision.ShouldNotify {
//	    // generate and send the delay message
//	}
func EvaluateDelay(delayMinutes, thresholdMinutes int) DelayDecision {
	return DelayDecision{
		DelayMinutes:     delayMinutes,
		ThresholdMinutes: thresholdMinutes,
		ShouldNotify:     delayMinutes >= thresholdMinutes,
	}
}
