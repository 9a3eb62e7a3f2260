package trafficapi

import (
	"context"
	"hash/fnv"
	"time"

	"delaynotify/internal/core/domain/model/delivery"
	"delaynotify/internal/core/domain/model/traffic"
)

const SimulatedProviderName = "simulated"

// Simulated derives a stable delay from the route and the current hour, so
// repeated checks of one delivery see the same traffic within an hour and
// different traffic across hours.
type Simulated struct {
	maxDelay int
	now      func() time.Time
}

func NewSimulated(maxDelayMinutes int) *Simulated {
	if maxDelayMinutes <= 0 {
		maxDelayMinutes = 90
	}
	return &Simulated{maxDelay: maxDelayMinutes, now: time.Now}
}

func (s *Simulated) Name() string { return SimulatedProviderName }

func (s *Simulated) Lookup(ctx context.Context, route delivery.Route) (traffic.Report, error) {
	if err := ctx.Err(); err != nil {
		return traffic.Report{}, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(route.Origin))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(route.Destination))
	_, _ = h.Write([]byte(s.now().UTC().Truncate(time.Hour).Format(time.RFC3339)))

	delay := int(h.Sum32() % uint32(s.maxDelay+1))
	estimate := time.Duration(45+delay) * time.Minute

	return traffic.NewReport(delay, "", estimate, SimulatedProviderName)
}
