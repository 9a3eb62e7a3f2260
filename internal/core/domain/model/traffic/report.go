package traffic

import (
	"errors"
	"strings"
	"time"

	"delaynotify/internal/pkg/errs"
)

// Report is the result of one traffic lookup.
type Report struct {
	DelayMinutes     int           `json:"delayMinutes"`
	Condition        Condition     `json:"condition"`
	DurationEstimate time.Duration `json:"durationEstimate"`
	Provider         string        `json:"provider"`
}

// NewReport builds a report, deriving the condition from the delay when the
// provider did not supply one. Negative delays (traffic faster than
// free-flow) are reported as zero.
func NewReport(delayMinutes int, condition Condition, estimate time.Duration, provider string) (Report, error) {
	if delayMinutes < 0 {
		delayMinutes = 0
	}
	if condition == "" {
		condition = ClassifyDelay(delayMinutes)
	}
	r := Report{
		DelayMinutes:     delayMinutes,
		Condition:        condition,
		DurationEstimate: estimate,
		Provider:         strings.TrimSpace(provider),
	}
	return r, r.Validate()
}

func (r Report) Validate() error {
	var err error
	if e := r.Condition.Validate(); e != nil {
		err = errors.Join(err, e)
	}
	if r.Provider == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("provider"))
	}
	if r.DurationEstimate < 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("durationEstimate", r.DurationEstimate.String(), "0s", "∞"))
	}
	return err
}
