// Package sessions owns screening conversations between turns: it creates
// them, serialises turns per conversation and keeps their state in storage.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/storage"
)

// Gauge receives the number of stored sessions after every change.
type Gauge interface {
	SetActiveSessions(n int)
}

// Started is returned when a conversation begins or is reset.
type Started struct {
	ID       string             `json:"id"`
	Greeting string             `json:"greeting"`
	Snapshot screening.Snapshot `json:"state"`
}

// Summary is the listing view of a session.
type Summary struct {
	ID        string             `json:"id"`
	Step      screening.StepName `json:"step"`
	Candidate string             `json:"candidate,omitempty"`
	Answered  int                `json:"answered_questions"`
	Total     int                `json:"total_questions"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Manager runs screening sessions on behalf of the HTTP, MCP and terminal
// surfaces. Sessions share nothing; turns of one session run one at a time.
type Manager struct {
	store *storage.Store
	deps  screening.Deps
	gauge Gauge

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// NewManager creates a Manager. gauge may be nil.
func NewManager(store *storage.Store, deps screening.Deps, gauge Gauge) *Manager {
	return &Manager{
		store: store,
		deps:  deps,
		gauge: gauge,
		locks: make(map[string]*sessionLock),
	}
}

// lock serialises work on id. Entries live only while a caller holds or
// waits for them, so lookups of unknown ids leave nothing behind.
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

type sessionLock struct {
	mu   sync.Mutex
	refs int // guarded by Manager.mu
}

// Start creates a new session at the greeting step.
func (m *Manager) Start(ctx context.Context) (Started, error) {
	id := uuid.New().String()
	sess := screening.NewSession(m.deps)

	unlock := m.lock(id)
	defer unlock()

	if err := m.save(ctx, id, sess); err != nil {
		return Started{}, err
	}
	m.updateGauge(ctx)
	slog.Debug("screening started", "session", id)
	return Started{ID: id, Greeting: sess.Greeting(), Snapshot: sess.Snapshot()}, nil
}

// Send runs one turn of session id.
func (m *Manager) Send(ctx context.Context, id, text string) (screening.Reply, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.load(ctx, id)
	if err != nil {
		return screening.Reply{}, err
	}
	reply := sess.Handle(ctx, text)
	if err := m.save(ctx, id, sess); err != nil {
		return screening.Reply{}, err
	}
	slog.Debug("screening turn",
		"session", id,
		"step", reply.Snapshot.Step,
		"outcome", reply.Outcome,
		"fallback", reply.Fallback,
	)
	return reply, nil
}

// Get returns the current snapshot of session id.
func (m *Manager) Get(ctx context.Context, id string) (screening.Snapshot, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.load(ctx, id)
	if err != nil {
		return screening.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Reset restarts session id from the greeting, keeping its id.
func (m *Manager) Reset(ctx context.Context, id string) (Started, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.load(ctx, id)
	if err != nil {
		return Started{}, err
	}
	greeting := sess.Reset()
	if err := m.save(ctx, id, sess); err != nil {
		return Started{}, err
	}
	slog.Debug("screening reset", "session", id)
	return Started{ID: id, Greeting: greeting, Snapshot: sess.Snapshot()}, nil
}

// Export returns the schema-checked export document of session id.
func (m *Manager) Export(ctx context.Context, id string) (screening.Document, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.load(ctx, id)
	if err != nil {
		return screening.Document{}, err
	}
	doc := sess.Export()
	if err := screening.ValidateExport(doc); err != nil {
		return screening.Document{}, fmt.Errorf("exporting session %s: %w", id, err)
	}
	return doc, nil
}

// Delete drops session id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	if err := m.store.DeleteSession(ctx, id); err != nil {
		return err
	}

	m.updateGauge(ctx)
	return nil
}

// List returns up to limit sessions, most recently active first.
func (m *Manager) List(ctx context.Context, limit int) ([]Summary, error) {
	recs, err := m.store.ListSessions(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		var st screening.State
		if err := json.Unmarshal([]byte(rec.StateJSON), &st); err != nil {
			slog.Warn("skipping unreadable session", "session", rec.ID, "error", err)
			continue
		}
		snap := st.Snapshot()
		out = append(out, Summary{
			ID:        rec.ID,
			Step:      snap.Step,
			Candidate: snap.CollectedData[screening.FullName],
			Answered:  snap.QuestionCursor,
			Total:     snap.TotalQuestions,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return out, nil
}

func (m *Manager) load(ctx context.Context, id string) (*screening.Session, error) {
	rec, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	var st screening.State
	if err := json.Unmarshal([]byte(rec.StateJSON), &st); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return screening.Restore(m.deps, st), nil
}

func (m *Manager) save(ctx context.Context, id string, sess *screening.Session) error {
	st := sess.State()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}
	return m.store.SaveSession(ctx, storage.SessionRecord{
		ID:        id,
		Step:      string(st.Step.Name()),
		StateJSON: string(data),
		CreatedAt: st.StartedAt,
		UpdatedAt: time.Now(),
	})
}

func (m *Manager) updateGauge(ctx context.Context) {
	if m.gauge == nil {
		return
	}
	n, err := m.store.CountSessions(ctx)
	if err != nil {
		slog.Warn("counting sessions", "error", err)
		return
	}
	m.gauge.SetActiveSessions(n)
}
