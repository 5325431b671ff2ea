package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
	"github.com/next-trace/scg-logged-events/registry"
)

func noop(context.Context, ...any) (any, error) { return nil, nil }

func returning(v any) ev.Handler {
	return func(context.Context, ...any) (any, error) { return v, nil }
}

func TestRegistry_OrderAndLookup(t *testing.T) {
	r := registry.New(nil)

	for _, v := range []string{"a", "b", "c"} {
		if _, err := r.On("evt", returning(v)); err != nil {
			t.Fatalf("on: %v", err)
		}
	}

	regs := r.Handlers("evt")
	if len(regs) != 3 {
		t.Fatalf("want 3 registrations, got %d", len(regs))
	}

	for i, want := range []string{"a", "b", "c"} {
		got, _ := regs[i].Invoke(t.Context())
		if got != want {
			t.Fatalf("position %d: want %s, got %v", i, want, got)
		}
	}

	if n := len(r.Handlers("missing")); n != 0 {
		t.Fatalf("want no handlers for unknown event, got %d", n)
	}
}

func TestRegistry_NilHandler(t *testing.T) {
	r := registry.New(nil)

	id, err := r.On("evt", nil)
	if !errors.Is(err, berr.ErrNilHandler) {
		t.Fatalf("want ErrNilHandler, got %v", err)
	}

	if id != "" || r.Len("evt") != 0 {
		t.Fatalf("nil handler must not be registered")
	}
}

func TestRegistry_HandlersReturnsCopy(t *testing.T) {
	r := registry.New(nil)
	_, _ = r.On("evt", noop)

	regs := r.Handlers("evt")
	regs[0] = nil

	if r.Handlers("evt")[0] == nil {
		t.Fatalf("caller mutation leaked into the registry")
	}
}

func TestRegistry_OffVariants(t *testing.T) {
	r := registry.New(nil)
	owner := &struct{ name string }{"view"}

	id, _ := r.On("a", noop)
	_, _ = r.On("a", noop, ev.WithOwner(owner))
	_, _ = r.On("b", noop, ev.WithOwner(owner))
	_, _ = r.Once("c", noop)

	if got := r.Events(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("events=%v", got)
	}

	if !r.OffID(id) {
		t.Fatalf("OffID should remove an existing registration")
	}

	if r.Remove(id) {
		t.Fatalf("second removal must report false")
	}

	if n := r.OffOwner(owner); n != 2 {
		t.Fatalf("OffOwner removed %d, want 2", n)
	}

	if r.Len("a") != 0 || r.Len("b") != 0 {
		t.Fatalf("owner handlers still present")
	}

	if n := r.Off("c"); n != 1 {
		t.Fatalf("Off removed %d, want 1", n)
	}

	_, _ = r.On("x", noop)
	_, _ = r.On("y", noop)

	if n := r.Off(""); n != 2 {
		t.Fatalf("Off(\"\") removed %d, want 2", n)
	}

	if len(r.Events()) != 0 {
		t.Fatalf("registry should be empty")
	}
}

func TestRegistry_OnceClaimedExactlyOnce(t *testing.T) {
	r := registry.New(nil)
	_, _ = r.Once("evt", noop)

	reg := r.Handlers("evt")[0]
	if !reg.Once {
		t.Fatalf("registration must be flagged once")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if reg.Claim() {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if claimed != 1 {
		t.Fatalf("once registration claimed %d times", claimed)
	}
}

func TestRegistry_ConcurrentSafety(t *testing.T) {
	r := registry.New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, _ = r.On("evt", noop)
		}()

		go func() {
			defer wg.Done()

			_ = r.Handlers("evt")
		}()
	}

	wg.Wait()

	if r.Len("evt") != 50 {
		t.Fatalf("len=%d", r.Len("evt"))
	}
}

func TestRegistry_OffOwnerNonComparableOwners(t *testing.T) {
	r := registry.New(nil)

	view := map[string]any{"name": "view"}
	other := map[string]any{"name": "view"}
	rows := []int{1, 2}

	type tagged struct{ v any }

	_, _ = r.On("a", noop, ev.WithOwner(view))
	_, _ = r.On("b", noop, ev.WithOwner(other))
	_, _ = r.On("c", noop, ev.WithOwner(rows))
	_, _ = r.On("d", noop, ev.WithOwner(tagged{v: []int{1}}))

	if n := r.OffOwner(view); n != 1 {
		t.Fatalf("map owner removed %d, want 1", n)
	}

	if r.Len("a") != 0 || r.Len("b") != 1 {
		t.Fatalf("map owners must match by identity, a=%d b=%d", r.Len("a"), r.Len("b"))
	}

	if n := r.OffOwner(rows); n != 1 {
		t.Fatalf("slice owner removed %d, want 1", n)
	}

	if n := r.OffOwner(tagged{v: []int{1}}); n != 0 {
		t.Fatalf("struct owner holding a slice removed %d, want 0", n)
	}

	if r.Len("d") != 1 {
		t.Fatalf("unmatched owner handler was removed")
	}
}
