// Package progress tracks the completion percentage of the long-running
// admin-triggered jobs so the dashboard can poll them.
package progress

import "sync"

type Phase string

const (
	PhaseCollection Phase = "collection"
	PhaseTraining   Phase = "training"
)

type Status struct {
	Running bool `json:"running"`
	Percent int  `json:"percent"`
}

type Tracker struct {
	lock   sync.Mutex
	phases map[Phase]Status
}

func NewTracker() *Tracker {
	return &Tracker{
		phases: map[Phase]Status{},
	}
}

// TryStart marks a phase running, returning false when it already is. This
// is the guard behind the API's 409 on double triggers.
func (t *Tracker) TryStart(phase Phase) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.phases[phase].Running {
		return false
	}
	t.phases[phase] = Status{Running: true, Percent: 0}
	return true
}

func (t *Tracker) Update(phase Phase, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.phases[phase] = Status{Running: t.phases[phase].Running, Percent: percent}
}

func (t *Tracker) Finish(phase Phase) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.phases[phase] = Status{Running: false, Percent: 100}
}

// Snapshot returns a copy of all phase statuses.
func (t *Tracker) Snapshot() map[Phase]Status {
	t.lock.Lock()
	defer t.lock.Unlock()

	out := make(map[Phase]Status, len(t.phases))
	for phase, status := range t.phases {
		out[phase] = status
	}
	return out
}
