package suggest

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/repository"
)

const (
	defaultDebounce = 300 * time.Millisecond
	defaultMinChars = 2
)

// State is a snapshot of the resolver for rendering: the current suggestion
// list, an inline error message if the last query failed, and input focus.
type State struct {
	Query   string
	Results []domain.OwnerRecord
	Err     string
	Focused bool
}

// Visible reports whether the suggestion list should be shown: only while the
// input is focused and there is something to show (results or an error).
func (s State) Visible() bool {
	return s.Focused && (len(s.Results) > 0 || s.Err != "")
}

// Resolver turns partial owner input into a ranked suggestion list. Queries
// are debounced, results cached per (filter, query) for the resolver's
// lifetime, and ranked by the larger of the session's local selection
// frequency and the server-reported frequency.
//
// Each debounce fire carries a generation number; a completion whose
// generation is no longer current is discarded, so a slow response for an old
// query can never overwrite the list for a newer one.
type Resolver struct {
	sessionID string
	filter    string
	source    Source
	freq      repository.FrequencyStore
	logger    *slog.Logger

	debounce  time.Duration
	minChars  int
	afterFunc func(d time.Duration, f func()) *time.Timer

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	query      string
	results    []domain.OwnerRecord
	errMsg     string
	focused    bool
	cache      map[string][]domain.OwnerRecord
	onUpdate   func(State)
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithDebounce overrides the quiescence window.
func WithDebounce(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.debounce = d }
}

// WithTimerFunc overrides timer creation, for deterministic tests.
func WithTimerFunc(f func(time.Duration, func()) *time.Timer) ResolverOption {
	return func(r *Resolver) { r.afterFunc = f }
}

// WithOnUpdate registers a hook fired after every state change, outside the
// resolver lock.
func WithOnUpdate(f func(State)) ResolverOption {
	return func(r *Resolver) { r.onUpdate = f }
}

// NewResolver creates a resolver for one session and document-type filter.
func NewResolver(sessionID, filter string, source Source, freq repository.FrequencyStore, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if source == nil {
		panic("suggest: NewResolver called without a source")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		sessionID: sessionID,
		filter:    filter,
		source:    source,
		freq:      freq,
		logger:    logger.With("session_id", sessionID),
		debounce:  defaultDebounce,
		minChars:  defaultMinChars,
		afterFunc: time.AfterFunc,
		cache:     make(map[string][]domain.OwnerRecord),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Input registers a keystroke. The previous debounce timer is cancelled; a
// resolution fires only after the input has been quiet for the full window.
// Queries shorter than the minimum length short-circuit to an empty list
// without touching the network.
func (r *Resolver) Input(ctx context.Context, query string) {
	r.mu.Lock()
	r.query = query
	r.generation++
	gen := r.generation
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	if len(strings.TrimSpace(query)) < r.minChars {
		r.results = nil
		r.errMsg = ""
		r.notifyLocked()
		r.mu.Unlock()
		return
	}

	r.timer = r.afterFunc(r.debounce, func() {
		r.resolve(ctx, query, gen)
	})
	r.mu.Unlock()
}

// resolve answers one debounce fire. The cache is consulted first; a hit is
// re-ranked against the latest frequency table rather than reused verbatim.
func (r *Resolver) resolve(ctx context.Context, query string, gen uint64) {
	r.mu.Lock()
	cached, hit := r.cache[query]
	r.mu.Unlock()

	if hit {
		suggestCacheHitsTotal.Inc()
		ranked := r.rank(ctx, cached)
		r.apply(gen, ranked, "")
		return
	}

	records, err := r.source.Search(ctx, query, r.filter)
	if err != nil {
		r.logger.Warn("owner suggestion query failed", "query", query, "error", err)
		r.apply(gen, nil, "could not load suggestions")
		return
	}

	records = domain.DedupeOwners(records)
	ranked := r.rank(ctx, records)

	r.mu.Lock()
	r.cache[query] = records
	r.mu.Unlock()
	r.apply(gen, ranked, "")
}

// apply installs a completion unless a newer generation has superseded it.
func (r *Resolver) apply(gen uint64, results []domain.OwnerRecord, errMsg string) {
	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		suggestStaleDropsTotal.Inc()
		return
	}
	r.results = results
	r.errMsg = errMsg
	r.notifyLocked()
	r.mu.Unlock()
}

// rank sorts records descending by the larger of the locally recorded
// selection frequency and the server-reported one. The sort is stable, so
// server order breaks ties.
func (r *Resolver) rank(ctx context.Context, records []domain.OwnerRecord) []domain.OwnerRecord {
	local := map[string]int64{}
	if r.freq != nil {
		table, err := r.freq.All(ctx, r.sessionID)
		if err != nil {
			r.logger.Warn("failed to load local frequency table", "error", err)
		} else {
			local = table
		}
	}

	out := make([]domain.OwnerRecord, len(records))
	copy(out, records)
	score := func(rec domain.OwnerRecord) int64 {
		s := int64(rec.Freq)
		if l := local[rec.Key()]; l > s {
			s = l
		}
		return s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out
}

// Choose resolves a selection: the chosen record is returned for the caller
// to fill its form, the session's frequency counter for the record's key is
// bumped, and the suggestion list closes. The counter write is best-effort.
func (r *Resolver) Choose(ctx context.Context, rec domain.OwnerRecord) domain.OwnerRecord {
	if r.freq != nil {
		if _, err := r.freq.Incr(ctx, r.sessionID, rec.Key()); err != nil {
			r.logger.Warn("failed to record owner selection", "key", rec.Key(), "error", err)
		}
	}

	r.mu.Lock()
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.results = nil
	r.errMsg = ""
	r.notifyLocked()
	r.mu.Unlock()
	return rec
}

// Dismiss closes the suggestion list without selecting.
func (r *Resolver) Dismiss() {
	r.mu.Lock()
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.results = nil
	r.errMsg = ""
	r.notifyLocked()
	r.mu.Unlock()
}

// SetFocus records whether the input currently has focus. Visibility is
// derived from focus plus list contents.
func (r *Resolver) SetFocus(focused bool) {
	r.mu.Lock()
	r.focused = focused
	r.notifyLocked()
	r.mu.Unlock()
}

// State snapshots the resolver.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]domain.OwnerRecord, len(r.results))
	copy(results, r.results)
	return State{Query: r.query, Results: results, Err: r.errMsg, Focused: r.focused}
}

func (r *Resolver) notifyLocked() {
	if r.onUpdate == nil {
		return
	}
	results := make([]domain.OwnerRecord, len(r.results))
	copy(results, r.results)
	st := State{Query: r.query, Results: results, Err: r.errMsg, Focused: r.focused}
	go r.onUpdate(st)
}
