package ws

import (
	"math"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/search"
)

// ProgressPayload is a search.Progress as sent to clients. Threshold is
// null until the result set first fills.
type ProgressPayload struct {
	search.Progress
	ETASeconds float64  `json:"etaSeconds"`
	Threshold  *float64 `json:"threshold"`
}

// NewProgressPayload converts p for the wire.
func NewProgressPayload(p search.Progress) ProgressPayload {
	out := ProgressPayload{Progress: p, ETASeconds: p.ETA.Seconds()}
	if !math.IsInf(p.Threshold, 0) && !math.IsNaN(p.Threshold) {
		t := p.Threshold
		out.Threshold = &t
	}
	return out
}

// ProgressSink returns a progress callback that publishes to h. Reports are
// dropped once the hub has stopped.
func (h *Hub) ProgressSink() func(search.Progress) {
	return func(p search.Progress) {
		if err := h.Publish(TypeProgress, NewProgressPayload(p)); err != nil {
			h.logf("[ws] progress: %v", err)
		}
	}
}

// PublishResult sends the final ranked builds under the run's id.
func (h *Hub) PublishResult(id string, res search.Result) error {
	return h.Publish(TypeResult, struct {
		ID string `json:"id"`
		search.Result
	}{id, res})
}
