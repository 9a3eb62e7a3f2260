package traffic

import (
	"fmt"
	"strings"

	"delaynotify/internal/pkg/errs"
)

type Condition string

const (
	ConditionLight    Condition = "light"
	ConditionModerate Condition = "moderate"
	ConditionHeavy    Condition = "heavy"
	ConditionSevere   Condition = "severe"
)

// ClassifyDelay buckets a delay in minutes: under 10 is light, under 30
// moderate, under 60 heavy, anything longer severe.
func ClassifyDelay(delayMinutes int) Condition {
	switch {
	case delayMinutes < 10:
		return ConditionLight
	case delayMinutes < 30:
		return ConditionModerate
	case delayMinutes < 60:
		return ConditionHeavy
	default:
		return ConditionSevere
	}
}

func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Condition) Validate() error {
	switch c {
	case ConditionLight, ConditionModerate, ConditionHeavy, ConditionSevere:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("condition", fmt.Errorf("%q is not a traffic condition", string(c)))
	}
}

func (c Condition) String() string {
	return string(c)
}
