package configstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/invitekit/internal/schema"
)

func testConfiguration(id string) *schema.Configuration {
	return &schema.Configuration{ID: id, Props: map[string]schema.Prop{}}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("abc", "", testConfiguration("abc"), "deploy-1")

	entry, ok := store.Get("abc", "")
	require.True(t, ok)
	assert.Equal(t, "abc", entry.Configuration.ID)
	assert.Equal(t, "deploy-1", entry.DeploymentID)
	assert.False(t, entry.CachedAt.IsZero())
}

func TestGetMissReportsFalse(t *testing.T) {
	t.Parallel()

	store := New()
	_, ok := store.Get("missing", "")
	assert.False(t, ok)
}

func TestLocaleVariantsAreIndependent(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("abc", "", testConfiguration("abc"), "")
	store.Set("abc", "fr", testConfiguration("abc"), "")
	store.Set("abc", "es-419", testConfiguration("abc"), "")
	require.Equal(t, 3, store.Len())

	// Clearing one locale leaves the others untouched.
	store.Clear("abc", "fr")
	_, ok := store.Get("abc", "fr")
	assert.False(t, ok)
	_, ok = store.Get("abc", "")
	assert.True(t, ok)
	_, ok = store.Get("abc", "es-419")
	assert.True(t, ok)
}

func TestClearComponentRemovesAllVariants(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("abc", "", testConfiguration("abc"), "")
	store.Set("abc", "fr", testConfiguration("abc"), "")
	store.Set("other", "", testConfiguration("other"), "")

	store.ClearComponent("abc")

	_, ok := store.Get("abc", "")
	assert.False(t, ok)
	_, ok = store.Get("abc", "fr")
	assert.False(t, ok)
	_, ok = store.Get("other", "")
	assert.True(t, ok)
}

func TestResetEmptiesEverything(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("abc", "", testConfiguration("abc"), "")
	store.Set("xyz", "de", testConfiguration("xyz"), "")

	store.Reset()
	assert.Equal(t, 0, store.Len())
}

func TestSetReplacesExistingEntry(t *testing.T) {
	t.Parallel()

	store := New()
	store.Set("abc", "", testConfiguration("abc"), "deploy-1")
	store.Set("abc", "", testConfiguration("abc"), "deploy-2")

	entry, ok := store.Get("abc", "")
	require.True(t, ok)
	assert.Equal(t, "deploy-2", entry.DeploymentID)
	assert.Equal(t, 1, store.Len())
}

func TestCompleteFetchStoresLatestGeneration(t *testing.T) {
	t.Parallel()

	store := New()
	gen := store.BeginFetch("abc", "")

	ok := store.CompleteFetch("abc", "", gen, testConfiguration("abc"), "deploy-1")
	require.True(t, ok)

	entry, found := store.Get("abc", "")
	require.True(t, found)
	assert.Equal(t, "deploy-1", entry.DeploymentID)
}

func TestStaleFetchCannotOverwriteNewerFetch(t *testing.T) {
	t.Parallel()

	store := New()
	slowGen := store.BeginFetch("abc", "")
	fastGen := store.BeginFetch("abc", "")

	// The newer fetch lands first.
	require.True(t, store.CompleteFetch("abc", "", fastGen, testConfiguration("abc"), "fresh"))

	// The superseded fetch must be rejected.
	assert.False(t, store.CompleteFetch("abc", "", slowGen, testConfiguration("abc"), "stale"))

	entry, ok := store.Get("abc", "")
	require.True(t, ok)
	assert.Equal(t, "fresh", entry.DeploymentID)
}

func TestExplicitSetSupersedesOutstandingFetch(t *testing.T) {
	t.Parallel()

	store := New()
	gen := store.BeginFetch("abc", "")
	store.Set("abc", "", testConfiguration("abc"), "manual")

	assert.False(t, store.CompleteFetch("abc", "", gen, testConfiguration("abc"), "stale"))

	entry, ok := store.Get("abc", "")
	require.True(t, ok)
	assert.Equal(t, "manual", entry.DeploymentID)
}

func TestGenerationsArePerKey(t *testing.T) {
	t.Parallel()

	store := New()
	genDefault := store.BeginFetch("abc", "")
	genFrench := store.BeginFetch("abc", "fr")

	// Completing the French fetch does not invalidate the default one.
	require.True(t, store.CompleteFetch("abc", "fr", genFrench, testConfiguration("abc"), ""))
	assert.True(t, store.CompleteFetch("abc", "", genDefault, testConfiguration("abc"), ""))
}

func TestConcurrentAccessIsConsistent(t *testing.T) {
	t.Parallel()

	store := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("component-%d", n%4)
			store.Set(id, "", testConfiguration(id), "")
			if entry, ok := store.Get(id, ""); ok {
				assert.Equal(t, id, entry.Configuration.ID)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, store.Len())
}
