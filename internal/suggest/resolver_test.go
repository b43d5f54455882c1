package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/repository"
)

// fakeSource returns canned results per query and counts calls.
type fakeSource struct {
	mu      sync.Mutex
	results map[string][]domain.OwnerRecord
	err     error
	calls   []string
}

func (s *fakeSource) Search(_ context.Context, query, _ string) ([]domain.OwnerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// fakeFreq is an in-memory frequency table.
type fakeFreq struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeFreq() *fakeFreq { return &fakeFreq{counts: map[string]int64{}} }

func (f *fakeFreq) Incr(_ context.Context, _ string, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeFreq) All(_ context.Context, _ string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out, nil
}

// manualTimers captures scheduled debounce callbacks so tests fire them by
// hand in any order.
type manualTimers struct {
	mu        sync.Mutex
	callbacks []func()
}

func (m *manualTimers) afterFunc(_ time.Duration, f func()) *time.Timer {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, f)
	m.mu.Unlock()
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	f := m.callbacks[i]
	m.mu.Unlock()
	f()
}

func (m *manualTimers) fireLast() {
	m.mu.Lock()
	f := m.callbacks[len(m.callbacks)-1]
	m.mu.Unlock()
	f()
}

func owner(name, doc string, freq int) domain.OwnerRecord {
	return domain.OwnerRecord{
		ID:       doc,
		Type:     domain.ClassifyDocument(doc),
		Name:     name,
		Document: doc,
		Freq:     freq,
	}
}

func newTestResolver(src Source, freq *fakeFreq) (*Resolver, *manualTimers) {
	timers := &manualTimers{}
	var fs repository.FrequencyStore
	if freq != nil {
		fs = freq
	}
	r := NewResolver("s1", domain.FilterAny, src, fs, nil, WithTimerFunc(timers.afterFunc))
	return r, timers
}

func TestResolverShortQuerySkipsNetwork(t *testing.T) {
	src := &fakeSource{}
	r, timers := newTestResolver(src, nil)

	r.Input(context.Background(), "m")

	timers.mu.Lock()
	scheduled := len(timers.callbacks)
	timers.mu.Unlock()
	assert.Zero(t, scheduled, "short query must not schedule a lookup")
	assert.Zero(t, src.callCount())
	st := r.State()
	assert.Empty(t, st.Results)
	assert.Empty(t, st.Err)
}

func TestResolverDebounceCollapsesKeystrokes(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"maria": {owner("Maria Lopez", "45678912", 3)},
	}}
	r, timers := newTestResolver(src, nil)

	r.Input(context.Background(), "ma")
	r.Input(context.Background(), "mar")
	r.Input(context.Background(), "maria")
	timers.fireLast()

	assert.Equal(t, []string{"maria"}, src.calls)
	st := r.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, "Maria Lopez", st.Results[0].Name)
}

func TestResolverStaleCompletionDropped(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"mar":   {owner("Marcos", "11111111", 1)},
		"maria": {owner("Maria Lopez", "45678912", 3)},
	}}
	r, timers := newTestResolver(src, nil)

	r.Input(context.Background(), "mar")
	r.Input(context.Background(), "maria")

	// newer query completes first, then the stale timer fires anyway
	timers.fire(1)
	timers.fire(0)

	st := r.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, "Maria Lopez", st.Results[0].Name, "stale completion must not overwrite newer results")
}

func TestResolverCacheHitSkipsNetwork(t *testing.T) {
	freq := newFakeFreq()
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"lo": {
			owner("Alpha SAC", "20111111111", 5),
			owner("Beta SAC", "20222222222", 3),
		},
	}}
	r, timers := newTestResolver(src, freq)

	r.Input(context.Background(), "lo")
	timers.fireLast()
	require.Equal(t, 1, src.callCount())
	assert.Equal(t, "Alpha SAC", r.State().Results[0].Name)

	// frequency changes between cache write and the next read
	for i := 0; i < 10; i++ {
		_, err := freq.Incr(context.Background(), "s1", "doc:20222222222")
		require.NoError(t, err)
	}

	r.Input(context.Background(), "x")
	r.Input(context.Background(), "lo")
	timers.fireLast()

	assert.Equal(t, 1, src.callCount(), "cache hit must not query the network")
	st := r.State()
	require.Len(t, st.Results, 2)
	assert.Equal(t, "Beta SAC", st.Results[0].Name, "cache hit must re-rank with the latest frequencies")
}

func TestResolverRankingPrefersLargerOfLocalAndServer(t *testing.T) {
	freq := newFakeFreq()
	for i := 0; i < 10; i++ {
		_, err := freq.Incr(context.Background(), "s1", "doc:45678912")
		require.NoError(t, err)
	}

	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"lopez": {
			owner("Server Favorite", "99999999", 5),
			owner("Local Favorite", "45678912", 3),
		},
	}}
	r, timers := newTestResolver(src, freq)

	r.Input(context.Background(), "lopez")
	timers.fireLast()

	st := r.State()
	require.Len(t, st.Results, 2)
	assert.Equal(t, "Local Favorite", st.Results[0].Name)
	assert.Equal(t, "Server Favorite", st.Results[1].Name)
}

func TestResolverFailureClearsResultsAndSetsError(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"ok": {owner("Maria", "45678912", 1)},
	}}
	r, timers := newTestResolver(src, nil)

	r.Input(context.Background(), "ok")
	timers.fireLast()
	require.NotEmpty(t, r.State().Results)

	src.mu.Lock()
	src.err = errors.New("gateway timeout")
	src.mu.Unlock()

	r.Input(context.Background(), "fail")
	timers.fireLast()

	st := r.State()
	assert.Empty(t, st.Results)
	assert.Equal(t, "could not load suggestions", st.Err)
}

func TestResolverVisibilityGatedOnFocus(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"ma": {owner("Maria", "45678912", 1)},
	}}
	r, timers := newTestResolver(src, nil)

	assert.False(t, r.State().Visible(), "nothing to show")

	r.SetFocus(true)
	assert.False(t, r.State().Visible(), "focused but empty")

	r.Input(context.Background(), "ma")
	timers.fireLast()
	assert.True(t, r.State().Visible())

	r.SetFocus(false)
	assert.False(t, r.State().Visible(), "unfocused list hides even with results")
}

func TestResolverChooseBumpsFrequencyAndCloses(t *testing.T) {
	freq := newFakeFreq()
	rec := owner("Maria Lopez", "45678912", 3)
	src := &fakeSource{results: map[string][]domain.OwnerRecord{"maria": {rec}}}
	r, timers := newTestResolver(src, freq)
	r.SetFocus(true)

	r.Input(context.Background(), "maria")
	timers.fireLast()
	require.NotEmpty(t, r.State().Results)

	chosen := r.Choose(context.Background(), rec)
	assert.Equal(t, "Maria Lopez", chosen.Name)
	assert.Equal(t, int64(1), freq.counts["doc:45678912"])

	st := r.State()
	assert.Empty(t, st.Results)
	assert.False(t, st.Visible())
}

func TestResolverDismissClosesWithoutSelecting(t *testing.T) {
	freq := newFakeFreq()
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"maria": {owner("Maria", "45678912", 1)},
	}}
	r, timers := newTestResolver(src, freq)
	r.SetFocus(true)

	r.Input(context.Background(), "maria")
	timers.fireLast()
	require.True(t, r.State().Visible())

	r.Dismiss()
	assert.False(t, r.State().Visible())
	assert.Empty(t, freq.counts)
}

func TestResolverCountsCacheHitsAndStaleDrops(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.OwnerRecord{
		"mar":   {owner("Marcos", "11111111", 1)},
		"maria": {owner("Maria Lopez", "45678912", 3)},
	}}
	r, timers := newTestResolver(src, nil)

	hits := testutil.ToFloat64(suggestCacheHitsTotal)
	drops := testutil.ToFloat64(suggestStaleDropsTotal)

	r.Input(context.Background(), "maria")
	timers.fireLast()

	r.Input(context.Background(), "x")
	r.Input(context.Background(), "maria")
	timers.fireLast()
	assert.Equal(t, hits+1, testutil.ToFloat64(suggestCacheHitsTotal))

	// scheduled callbacks so far: 0 and 1 for the two "maria" inputs
	r.Input(context.Background(), "mar")   // callback 2
	r.Input(context.Background(), "maria") // callback 3
	timers.fire(3)
	timers.fire(2)
	assert.Equal(t, drops+1, testutil.ToFloat64(suggestStaleDropsTotal))
}
