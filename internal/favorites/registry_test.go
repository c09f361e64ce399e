package favorites

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/storage"
	"github.com/cristianoliveira/soundboard/internal/transfer"
	"github.com/stretchr/testify/require"
)

func snd(ref, title string) domain.Sound {
	return domain.Sound{AudioRef: ref, Title: title}
}

func refs(list []domain.Sound) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.AudioRef)
	}
	return out
}

func newTestRegistry(t *testing.T, initial ...domain.Sound) (*Registry, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	if len(initial) > 0 {
		require.NoError(t, store.Set(context.Background(), StorageKey, initial))
	}
	r := New(store)
	_, err := r.Load(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r, store
}

func stored(t *testing.T, r *Registry, store storage.Store) []domain.Sound {
	t.Helper()
	require.NoError(t, r.Flush(context.Background()))
	got, _, err := store.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	return got
}

func TestLoadDefaultsToEmpty(t *testing.T) {
	r, store := newTestRegistry(t)

	require.Empty(t, r.Favorites())
	require.Equal(t, 0, r.Len())
	require.Equal(t, 0, store.Writes(), "load must not write back")
}

func TestLoadAppliesExclusions(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), StorageKey, []domain.Sound{snd("a", "Air"), snd("b", "Bell"), snd("c", "Car")}))
	r := New(store)
	defer r.Close(context.Background())

	got, err := r.Load(context.Background(), []string{"b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, refs(got))
	require.Equal(t, 1, store.Writes())

	stillStored, _, err := store.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	require.Len(t, stillStored, 3, "exclusions are not persisted")
}

func TestLoadDropsInvalidAndDuplicateRecords(t *testing.T) {
	r, _ := newTestRegistry(t, snd("a", "Air"), snd("", "Nameless"), snd("a", "Again"), snd("b", ""))

	require.Equal(t, []domain.Sound{snd("a", "Air")}, r.Favorites())
}

type failingStore struct {
	storage.Store
	mu       sync.Mutex
	getErr   error
	setErr   error
	setCalls int
}

func (f *failingStore) Get(ctx context.Context, key string) ([]domain.Sound, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []domain.Sound) error {
	f.mu.Lock()
	f.setCalls++
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

func TestLoadErrorLeavesEmptyList(t *testing.T) {
	boom := errors.New("disk on fire")
	r := New(&failingStore{Store: storage.NewMemoryStore(), getErr: boom})
	defer r.Close(context.Background())

	got, err := r.Load(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	require.Empty(t, got)
}

func TestAdd(t *testing.T) {
	r, store := newTestRegistry(t)

	require.True(t, r.Add(snd("a", "Air")))
	require.True(t, r.Add(snd("b", "Bell")))
	require.False(t, r.Add(snd("a", "Other title")), "duplicate reference")
	require.False(t, r.Add(snd("", "No ref")))
	require.False(t, r.Add(snd("c", "")))

	require.Equal(t, []domain.Sound{snd("a", "Air"), snd("b", "Bell")}, r.Favorites())
	require.Equal(t, 1, r.IndexOf("b"))
	require.Equal(t, -1, r.IndexOf("c"))
	require.True(t, r.Contains("a"))
	require.Equal(t, r.Favorites(), stored(t, r, store))
}

func TestReplaceAt(t *testing.T) {
	r, store := newTestRegistry(t, snd("a", "Air"), snd("b", "Bell"))

	require.False(t, r.ReplaceAt("missing", snd("c", "Car")))
	require.False(t, r.ReplaceAt("a", snd("c", "")), "invalid record")
	require.False(t, r.ReplaceAt("a", snd("b", "Bell 2")), "reference lives in another slot")

	require.True(t, r.ReplaceAt("a", snd("c", "Car")))
	require.Equal(t, []domain.Sound{snd("c", "Car"), snd("b", "Bell")}, r.Favorites())

	require.True(t, r.ReplaceAt("b", snd("b", "Bell 2")), "same slot update")
	require.Equal(t, "Bell 2", r.Favorites()[1].Title)
	require.Equal(t, r.Favorites(), stored(t, r, store))
}

func TestMove(t *testing.T) {
	r, _ := newTestRegistry(t, snd("a", "A"), snd("b", "B"), snd("c", "C"), snd("d", "D"))

	require.True(t, r.Move("a", "c"))
	require.Equal(t, []string{"b", "c", "a", "d"}, refs(r.Favorites()))

	require.True(t, r.Move("d", "b"))
	require.Equal(t, []string{"d", "b", "c", "a"}, refs(r.Favorites()))

	require.False(t, r.Move("x", "b"))
	require.False(t, r.Move("b", "x"))
	require.False(t, r.Move("b", "b"))
}

func TestRemove(t *testing.T) {
	r, store := newTestRegistry(t, snd("a", "Air"), snd("b", "Bell"))

	require.False(t, r.Remove("x"))
	require.True(t, r.Remove("a"))
	require.False(t, r.Remove("a"))
	require.Equal(t, []domain.Sound{snd("b", "Bell")}, r.Favorites())
	require.Equal(t, r.Favorites(), stored(t, r, store))
}

func TestUpsert(t *testing.T) {
	r, _ := newTestRegistry(t, snd("a", "Air"))

	require.True(t, r.Upsert(domain.Sound{AudioRef: "a", Title: "Air", Emoji: "💨", Repeatable: true}))
	require.False(t, r.Upsert(domain.Sound{AudioRef: "a", Title: "Air", Emoji: "💨", Repeatable: true}), "unchanged")
	require.True(t, r.Upsert(snd("b", "Bell")))
	require.False(t, r.Upsert(snd("", "x")))

	got := r.Favorites()
	require.Equal(t, []string{"a", "b"}, refs(got))
	require.True(t, got[0].Repeatable)
	require.Equal(t, "💨", got[0].Emoji)
}

func TestDropOutsideTargetRemoves(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "Air"), snd("B", "Bell"))

	outcome := r.Drop(transfer.Payload{AudioRef: "B", RemoveFromFavorites: true})

	require.Equal(t, OutcomeRemoved, outcome)
	require.Equal(t, []domain.Sound{snd("A", "Air")}, r.Favorites())
}

func TestDropOnFavoriteReplacesWithNewSound(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "Air"), snd("B", "Bell"))

	outcome := r.DropOnFavorite("A", transfer.Payload{AudioRef: "C", Title: "Car"})

	require.Equal(t, OutcomeReplaced, outcome)
	require.Equal(t, []domain.Sound{snd("C", "Car"), snd("B", "Bell")}, r.Favorites())
}

func TestDropOnFavoriteReordersExistingFavorite(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "A"), snd("B", "B"), snd("C", "C"))

	outcome := r.DropOnFavorite("A", transfer.Payload{AudioRef: "C", Title: "C"})

	require.Equal(t, OutcomeMoved, outcome)
	require.Equal(t, []string{"C", "A", "B"}, refs(r.Favorites()))
}

func TestDropOnFavoriteReordersWithReferenceOnly(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "Air"), snd("B", "Bell"), snd("C", "Car"))

	p, ok := transfer.Decode(`{"audioFile":"C"}`)
	require.True(t, ok)
	require.False(t, p.Valid())

	require.Equal(t, OutcomeMoved, r.DropOnFavorite("A", p))
	require.Equal(t, []domain.Sound{snd("C", "Car"), snd("A", "Air"), snd("B", "Bell")}, r.Favorites())
}

func TestDropOnFavoriteWithRemoveIntentIgnoresTarget(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "A"), snd("B", "B"))

	outcome := r.DropOnFavorite("A", transfer.Payload{AudioRef: "B", Title: "B", RemoveFromFavorites: true})

	require.Equal(t, OutcomeRemoved, outcome)
	require.Equal(t, []string{"A"}, refs(r.Favorites()))
}

func TestDropOnFavoriteIgnoresInvalidPayloads(t *testing.T) {
	r, store := newTestRegistry(t, snd("A", "A"))

	require.Equal(t, OutcomeIgnored, r.DropOnFavorite("A", transfer.Payload{}))
	require.Equal(t, OutcomeIgnored, r.DropOnFavorite("A", transfer.Payload{AudioRef: "Z"}))
	require.Equal(t, OutcomeIgnored, r.DropOnFavorite("missing", transfer.Payload{AudioRef: "Z", Title: "Z"}))
	require.Equal(t, OutcomeIgnored, r.DropOnFavorite("A", transfer.Payload{AudioRef: "A", Title: "A"}))
	require.Equal(t, OutcomeIgnored, r.DropOnFavorite("A", transfer.Payload{AudioRef: "Z", RemoveFromFavorites: true}))

	require.Equal(t, []string{"A"}, refs(r.Favorites()))
	require.NoError(t, r.Flush(context.Background()))
	require.Equal(t, 1, store.Writes(), "only the seed write")
}

func TestDropOnCatchAll(t *testing.T) {
	r, _ := newTestRegistry(t, snd("A", "Air"))

	require.Equal(t, OutcomeAdded, r.Drop(transfer.Payload{AudioRef: "B", Title: "Bell", Emoji: "🔔"}))
	require.Equal(t, OutcomeUpdated, r.Drop(transfer.Payload{AudioRef: "A", Title: "Airhorn", Repeatable: true}))
	require.Equal(t, OutcomeIgnored, r.Drop(transfer.Payload{AudioRef: "A", Title: "Airhorn", Repeatable: true}))
	require.Equal(t, OutcomeIgnored, r.Drop(transfer.Payload{Title: "no ref"}))
	require.Equal(t, OutcomeIgnored, r.Drop(transfer.Payload{AudioRef: "Z", RemoveFromFavorites: true}))

	require.Equal(t, []domain.Sound{
		{AudioRef: "A", Title: "Airhorn", Repeatable: true},
		{AudioRef: "B", Title: "Bell", Emoji: "🔔"},
	}, r.Favorites())
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "moved", OutcomeMoved.String())
	require.Equal(t, "unknown", Outcome(42).String())
	require.False(t, OutcomeIgnored.Changed())
	require.True(t, OutcomeReplaced.Changed())
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	r, _ := newTestRegistry(t, snd("a", "Air"))

	sub := r.Subscribe()
	defer sub.Close()
	require.Equal(t, []string{"a"}, refs(<-sub.C))

	r.Add(snd("b", "Bell"))
	require.Equal(t, []string{"a", "b"}, refs(<-sub.C))
}

func TestSubscribeKeepsOnlyLatestSnapshot(t *testing.T) {
	r, _ := newTestRegistry(t)

	sub := r.Subscribe()
	defer sub.Close()

	r.Add(snd("a", "A"))
	r.Add(snd("b", "B"))
	r.Add(snd("c", "C"))

	require.Equal(t, []string{"a", "b", "c"}, refs(<-sub.C))
	select {
	case snap := <-sub.C:
		t.Fatalf("unexpected extra snapshot %v", refs(snap))
	default:
	}
}

func TestSnapshotsAreIndependentCopies(t *testing.T) {
	r, _ := newTestRegistry(t, snd("a", "Air"))

	snap := r.Favorites()
	snap[0].Title = "changed"

	require.Equal(t, "Air", r.Favorites()[0].Title)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)
	sub := r.Subscribe()
	<-sub.C

	sub.Close()
	sub.Close()

	_, open := <-sub.C
	require.False(t, open)
	require.True(t, r.Add(snd("a", "Air")), "mutations keep working without subscribers")
}

func TestRegistryCloseClosesSubscriptions(t *testing.T) {
	r := New(storage.NewMemoryStore())
	sub := r.Subscribe()
	<-sub.C

	require.NoError(t, r.Close(context.Background()))
	_, open := <-sub.C
	require.False(t, open)
	sub.Close()
}

func TestWriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	boom := errors.New("read-only filesystem")
	store := &failingStore{Store: storage.NewMemoryStore(), setErr: boom}
	r := New(store)
	defer r.Close(context.Background())

	require.True(t, r.Add(snd("a", "Air")))
	require.ErrorIs(t, r.Flush(context.Background()), boom)
	require.Equal(t, []string{"a"}, refs(r.Favorites()))

	store.mu.Lock()
	store.setErr = nil
	store.mu.Unlock()
	require.True(t, r.Add(snd("b", "Bell")))
	require.NoError(t, r.Flush(context.Background()))
}

type slowStore struct {
	*storage.MemoryStore
	release chan struct{}
	mu      sync.Mutex
	history [][]string
}

func (s *slowStore) Set(ctx context.Context, key string, value []domain.Sound) error {
	<-s.release
	s.mu.Lock()
	s.history = append(s.history, refs(value))
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, key, value)
}

func TestWritesArriveInMutationOrder(t *testing.T) {
	store := &slowStore{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	r := New(store)

	r.Add(snd("a", "A"))
	r.Add(snd("b", "B"))
	r.Remove("a")
	r.Add(snd("c", "C"))
	require.Equal(t, []string{"b", "c"}, refs(r.Favorites()), "mutations do not wait for storage")

	close(store.release)
	require.NoError(t, r.Close(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.history)
	require.Equal(t, []string{"b", "c"}, store.history[len(store.history)-1], "last write holds the final state")

	// Every write is one of the intermediate states, in mutation order.
	states := [][]string{{"a"}, {"a", "b"}, {"b"}, {"b", "c"}}
	last := -1
	for _, written := range store.history {
		idx := -1
		for i, state := range states {
			if slices.Equal(state, written) {
				idx = i
			}
		}
		require.Greater(t, idx, last, "write %v arrived out of order", written)
		last = idx
	}
}

func TestFlushHonorsContext(t *testing.T) {
	store := &slowStore{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	r := New(store)
	defer func() {
		close(store.release)
		_ = r.Close(context.Background())
	}()

	r.Add(snd("a", "A"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, r.Flush(ctx), context.DeadlineExceeded)
}

func TestRoundTripThroughStore(t *testing.T) {
	r, store := newTestRegistry(t)
	r.Add(snd("a", "A"))
	r.Add(snd("b", "B"))
	r.Add(snd("c", "C"))
	r.Move("c", "a")
	r.ReplaceAt("b", snd("d", "D"))
	require.NoError(t, r.Flush(context.Background()))

	reloaded := New(store)
	defer reloaded.Close(context.Background())
	got, err := reloaded.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, r.Favorites(), got)
}

func TestConcurrentMutations(t *testing.T) {
	r, store := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := string(rune('a' + i))
			r.Add(snd(ref, ref))
			r.Add(snd(ref, ref))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 20, r.Len())
	require.Equal(t, r.Favorites(), stored(t, r, store))
}
