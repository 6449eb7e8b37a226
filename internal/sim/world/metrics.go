package world

// WorldMetrics is a read-only snapshot of loop health, safe to read from
// any goroutine via Metrics().
type WorldMetrics struct {
	Tick         uint64      `json:"tick"`
	Observers    int         `json:"observers"`
	LoadedChunks int         `json:"loaded_chunks"`
	Tracked      int         `json:"tracked"`
	Pending      int         `json:"pending"`
	Drops        int         `json:"drops"`
	QueueDepths  QueueDepths `json:"queue_depths"`
	StepMS       float64     `json:"step_ms"`
}

type QueueDepths struct {
	Inbox        int `json:"inbox"`
	ObserverJoin int `json:"observer_join"`
}

func (w *World) Metrics() WorldMetrics {
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}
