package suggest

import "context"

// Tracker makes sure only the latest lookup's response is applied.
//
// Each Begin cancels the previous lookup's context and hands out a new
// generation number; a response is current only if its generation is still
// the newest. Tracker is meant to be owned by a single event loop and is not
// safe for concurrent use.
type Tracker struct {
	gen    uint64
	query  string
	cancel context.CancelFunc
}

// Begin starts a lookup for query, cancelling any lookup still in flight.
func (t *Tracker) Begin(parent context.Context, query string) (context.Context, uint64) {
	gen := t.Next(query)
	ctx, _ := t.Attach(parent, gen)
	return ctx, gen
}

// Next reserves a generation without starting a request. Used to debounce:
// a delayed lookup fires only if its generation is still current.
func (t *Tracker) Next(query string) uint64 {
	t.Cancel()
	t.gen++
	t.query = query
	return t.gen
}

// Attach returns the cancellable context for a reserved generation.
// It reports false if gen has been superseded.
func (t *Tracker) Attach(parent context.Context, gen uint64) (context.Context, bool) {
	if gen != t.gen {
		return nil, false
	}
	t.Cancel()
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	return ctx, true
}

// Current reports whether gen is the newest generation.
func (t *Tracker) Current(gen uint64) bool {
	return gen == t.gen
}

// Query returns the query of the newest generation.
func (t *Tracker) Query() string {
	return t.query
}

// Done releases the context of gen once its response has arrived.
func (t *Tracker) Done(gen uint64) {
	if gen == t.gen && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Cancel aborts the in-flight lookup, if any, without starting a new one.
func (t *Tracker) Cancel() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
