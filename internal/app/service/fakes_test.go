package service

import (
	"context"
	"encoding/json"
	"hackboard/internal/common"
	"hackboard/internal/domain/model"
	"hackboard/internal/platform/lock"
	"sync"
	"time"
)

// The fakes store JSON copies so callers cannot mutate stored state in place,
// the same as a round trip through Postgres.

func clone[T any](t T) T {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

type fakeHackathonRepo struct {
	mu    sync.Mutex
	items map[string]model.Hackathon
	saves int
}

func newFakeHackathonRepo(hs ...model.Hackathon) *fakeHackathonRepo {
	r := &fakeHackathonRepo{items: map[string]model.Hackathon{}}
	for _, h := range hs {
		r.items[h.ID] = clone(h)
	}
	return r
}

func (r *fakeHackathonRepo) Create(_ context.Context, h *model.Hackathon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Slug == h.Slug {
			return common.ErrConflict
		}
	}
	r.items[h.ID] = clone(*h)
	return nil
}

func (r *fakeHackathonRepo) FindByID(_ context.Context, id string) (*model.Hackathon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	h = clone(h)
	return &h, nil
}

func (r *fakeHackathonRepo) FindBySlug(_ context.Context, slug string) (*model.Hackathon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.items {
		if h.Slug == slug {
			h = clone(h)
			return &h, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeHackathonRepo) List(_ context.Context) ([]model.Hackathon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Hackathon{}
	for _, h := range r.items {
		out = append(out, clone(h))
	}
	return out, nil
}

func (r *fakeHackathonRepo) ListByOrganizer(_ context.Context, organizerID string) ([]model.Hackathon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Hackathon{}
	for _, h := range r.items {
		if h.OrganizerID == organizerID {
			out = append(out, clone(h))
		}
	}
	return out, nil
}

func (r *fakeHackathonRepo) Save(_ context.Context, h *model.Hackathon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[h.ID]; !ok {
		return common.ErrNotFound
	}
	r.items[h.ID] = clone(*h)
	r.saves++
	return nil
}

func (r *fakeHackathonRepo) stored(id string) model.Hackathon {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.items[id])
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	items map[string]model.Application
	order []string
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: map[string]model.Application{}}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.HackathonID == app.HackathonID && existing.ApplicantID == app.ApplicantID {
			return common.ErrAlreadyApplied
		}
	}
	app.Version = 1
	r.items[app.ID] = clone(*app)
	r.order = append(r.order, app.ID)
	return nil
}

func (r *fakeApplicationRepo) FindByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	app = clone(app)
	return &app, nil
}

func (r *fakeApplicationRepo) filter(keep func(model.Application) bool) []model.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Application{}
	for _, id := range r.order {
		if app := r.items[id]; keep(app) {
			out = append(out, clone(app))
		}
	}
	return out
}

func (r *fakeApplicationRepo) FindByHackathonAndApplicant(_ context.Context, hackathonID, applicantID string) ([]model.Application, error) {
	return r.filter(func(a model.Application) bool {
		return a.HackathonID == hackathonID && a.ApplicantID == applicantID
	}), nil
}

func (r *fakeApplicationRepo) FindByHackathon(_ context.Context, hackathonID string) ([]model.Application, error) {
	return r.filter(func(a model.Application) bool { return a.HackathonID == hackathonID }), nil
}

func (r *fakeApplicationRepo) FindByApplicant(_ context.Context, applicantID string) ([]model.Application, error) {
	return r.filter(func(a model.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (r *fakeApplicationRepo) Save(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[app.ID]
	if !ok {
		return common.ErrNotFound
	}
	if stored.Version != app.Version {
		return common.ErrStaleWrite
	}
	app.Version++
	r.items[app.ID] = clone(*app)
	return nil
}

// put stores app as-is, bypassing Create.
func (r *fakeApplicationRepo) put(app model.Application) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app.PhaseSubmissions == nil {
		app.PhaseSubmissions = model.PhaseSubmissions{}
	}
	if _, ok := r.items[app.ID]; !ok {
		r.order = append(r.order, app.ID)
	}
	r.items[app.ID] = clone(app)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	keys []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (lock.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, lock.ErrNotAcquired
	}
	l.held[key] = true
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

type sentNotification struct {
	kind NotificationKind
	app  string
	msg  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) ApplicationReceived(_ context.Context, _ *model.Hackathon, app *model.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: NotifyApplicationReceived, app: app.ID})
}

func (n *recordingNotifier) ReviewOutcome(_ context.Context, _ *model.Hackathon, app *model.Application, o ReviewOutcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: o.Kind, app: app.ID, msg: o.Message})
}

func (n *recordingNotifier) kinds() []NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []NotificationKind
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
