package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Registry is a concurrency-safe handler registry. Handlers are never invoked while its lock is
// held, so a handler may register or remove other handlers, including for the event being dispatched.
type Registry struct {
	mu sync.RWMutex

	byName map[string][]*ev.Registration
	byID   map[string]*ev.Registration

	logger *slog.Logger
}

var _ ev.Registry = (*Registry)(nil)

// New constructs an empty Registry. A nil logger disables registry logging.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Registry{
		byName: make(map[string][]*ev.Registration),
		byID:   make(map[string]*ev.Registration),
		logger: logger,
	}
}

// On registers a persistent handler for name and returns its registration ID.
func (r *Registry) On(name string, h ev.Handler, opts ...ev.SubscribeOption) (string, error) {
	return r.add(name, h, false, opts)
}

// Once registers a handler that fires on at most one dispatch of name.
func (r *Registry) Once(name string, h ev.Handler, opts ...ev.SubscribeOption) (string, error) {
	return r.add(name, h, true, opts)
}

func (r *Registry) add(name string, h ev.Handler, once bool, opts []ev.SubscribeOption) (string, error) {
	if h == nil {
		return "", fmt.Errorf("register %q: %w", name, berr.ErrNilHandler)
	}

	var o ev.SubscribeOptions
	for _, f := range opts {
		f(&o)
	}

	reg := &ev.Registration{
		ID:      uuid.NewString(),
		Event:   name,
		Handler: h,
		Owner:   o.Owner,
		Once:    once,
	}

	r.mu.Lock()
	r.byName[name] = append(r.byName[name], reg)
	r.byID[reg.ID] = reg
	r.mu.Unlock()

	r.logger.Debug("handler registered", "event", name, "id", reg.ID, "once", once)

	return reg.ID, nil
}

// Handlers returns the registrations for name in registration order. The returned slice is the
// caller's; the registrations it points to stay shared with the registry.
func (r *Registry) Handlers(name string) []*ev.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*ev.Registration(nil), r.byName[name]...)
}

// Off removes every handler for name. An empty name removes every handler of every event.
// It returns the number of registrations removed.
func (r *Registry) Off(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		n := len(r.byID)
		r.byName = make(map[string][]*ev.Registration)
		r.byID = make(map[string]*ev.Registration)

		return n
	}

	regs := r.byName[name]
	for _, reg := range regs {
		delete(r.byID, reg.ID)
	}

	delete(r.byName, name)

	return len(regs)
}

// Remove removes a single registration by ID.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(id)
}

// OffID is an alias of Remove that reads naturally next to Off and OffOwner.
func (r *Registry) OffID(id string) bool { return r.Remove(id) }

// OffOwner removes every registration whose owner matches owner and returns how many were removed.
// Comparable owners match by equality; maps, slices, funcs and channels match by identity.
func (r *Registry) OffOwner(owner any) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string

	for id, reg := range r.byID {
		if sameOwner(reg.Owner, owner) {
			ids = append(ids, id)
		}
	}

	for _, id := range ids {
		r.removeLocked(id)
	}

	return len(ids)
}

func sameOwner(a, b any) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta == nil {
		return true
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !ta.Comparable() {
		return false
	}

	// Comparable structs and arrays can still hold non-comparable values behind interface fields.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()

	return a == b
}

func (r *Registry) removeLocked(id string) bool {
	reg, ok := r.byID[id]
	if !ok {
		return false
	}

	delete(r.byID, id)

	regs := r.byName[reg.Event]
	kept := make([]*ev.Registration, 0, len(regs))

	for _, x := range regs {
		if x.ID != id {
			kept = append(kept, x)
		}
	}

	if len(kept) == 0 {
		delete(r.byName, reg.Event)
	} else {
		r.byName[reg.Event] = kept
	}

	return true
}

// Len returns the number of handlers registered for name.
func (r *Registry) Len(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byName[name])
}

// Events returns the sorted names of events that currently have handlers.
func (r *Registry) Events() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))

	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	return names
}
