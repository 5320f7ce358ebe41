package engine

import (
	"context"
	"time"
)

// Recorder receives one observation per chat call.
type Recorder interface {
	ObserveEngineRequest(backend string, ok bool, d time.Duration)
}

// Metered wraps an Engine and reports every Chat call to a Recorder.
type Metered struct {
	Engine
	rec Recorder
}

// WithRecorder returns e wrapped so chat calls are observed by rec.
// A nil recorder returns e unchanged.
func WithRecorder(e Engine, rec Recorder) Engine {
	if e == nil || rec == nil {
		return e
	}
	return &Metered{Engine: e, rec: rec}
}

func (m *Metered) Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error) {
	start := time.Now()
	out, err := m.Engine.Chat(ctx, model, messages, opts)
	m.rec.ObserveEngineRequest(m.Engine.Name(), err == nil, time.Since(start))
	return out, err
}
