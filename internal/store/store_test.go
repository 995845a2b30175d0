package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.db.Ping())
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if !assert.NoError(t, err, "PRAGMA %s", tt.pragma) {
			continue
		}
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestKV_GetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKV_SetGetOverwriteDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "currentUser", "Ada"))
	v, err := s.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	require.NoError(t, s.Set(ctx, "currentUser", "Grace"))
	v, err = s.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.Equal(t, "Grace", v, "last writer wins")

	require.NoError(t, s.Delete(ctx, "currentUser"))
	_, err = s.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "currentUser"), "deleting a missing key")
}

func TestKV_KeysByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, k := range []string{ProgressKey("Bob"), ProgressKey("Ada"), MasteryKey("Ada"), "PROGRESS:x", KeyUsers} {
		require.NoError(t, s.Set(ctx, k, "{}"))
	}

	keys, err := s.Keys(ctx, ProgressPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"progress:Ada", "progress:Bob"}, keys)
}

func TestJSONHelpers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, s, "doc", doc{Name: "a", Count: 3}))

	var got doc
	require.NoError(t, GetJSON(ctx, s, "doc", &got))
	assert.Equal(t, doc{Name: "a", Count: 3}, got)

	assert.ErrorIs(t, GetJSON(ctx, s, "missing", &got), ErrNotFound)

	require.NoError(t, s.Set(ctx, "broken", "{not json"))
	assert.Error(t, GetJSON(ctx, s, "broken", &got))
}

const legacySets = `[
  {"id":"mult-3s","name":"Multiplication 3s","createdAt":"2024-01-01T00:00:00Z","cards":[
    {"id":"3x1","question":"3 x 1","answer":3,"weight":4,"consecutiveCorrect":0,"lastDurationMs":4200,
     "stats":{"totalAttempts":3,"correctAttempts":1,"fastAttempts":0,"slowAttempts":1,"incorrectAttempts":2}},
    {"id":"3x2","question":"3 x 2","answer":6,"weight":1}
  ]}
]`

func TestMigrateLegacy_MovesProgressAndRewritesSets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyMathSets, legacySets))

	res, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Equal(t, 2, res.CardsMigrated)
	assert.Equal(t, 1, res.SetsRewritten)

	var progress map[string]map[string]any
	require.NoError(t, GetJSON(ctx, s, ProgressKey(LegacyUser), &progress))
	require.Contains(t, progress, "3x1")
	assert.EqualValues(t, 4, progress["3x1"]["weight"])
	assert.EqualValues(t, 4200, progress["3x1"]["lastDurationMs"])
	stats := progress["3x1"]["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["totalAttempts"])
	assert.Equal(t, []any{}, progress["3x1"]["masteredAtLevels"])

	require.Contains(t, progress, "3x2")
	stats = progress["3x2"]["stats"].(map[string]any)
	assert.EqualValues(t, 0, stats["totalAttempts"], "missing stats become zero stats")

	raw, err := s.Get(ctx, KeyMathSets)
	require.NoError(t, err)
	assert.NotContains(t, raw, "weight")
	assert.NotContains(t, raw, "stats")

	var sets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &sets))
	require.Len(t, sets, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", sets[0]["createdAt"])
	assert.Len(t, sets[0]["cards"], 2)

	marker, err := s.Get(ctx, KeyMigration)
	require.NoError(t, err)
	assert.Equal(t, "true", marker)
}

func TestMigrateLegacy_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyMathSets, legacySets))

	_, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)
	first, err := s.Get(ctx, ProgressKey(LegacyUser))
	require.NoError(t, err)

	// Progress written after migration must survive a second run.
	require.NoError(t, s.Set(ctx, ProgressKey(LegacyUser), `{"3x1":{"weight":7}}`))

	res, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)
	assert.False(t, res.Ran)

	after, err := s.Get(ctx, ProgressKey(LegacyUser))
	require.NoError(t, err)
	assert.NotEqual(t, first, after)
	assert.JSONEq(t, `{"3x1":{"weight":7}}`, after)
}

func TestMigrateLegacy_KeepsExistingUserProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyMathSets, legacySets))
	require.NoError(t, s.Set(ctx, ProgressKey(LegacyUser), `{"3x1":{"weight":2}}`))

	_, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)

	var progress map[string]map[string]any
	require.NoError(t, GetJSON(ctx, s, ProgressKey(LegacyUser), &progress))
	assert.EqualValues(t, 2, progress["3x1"]["weight"])
	assert.Contains(t, progress, "3x2")
}

func TestMigrateLegacy_FreshInstall(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Zero(t, res.CardsMigrated)

	_, err = s.Get(ctx, KeyMathSets)
	assert.ErrorIs(t, err, ErrNotFound, "fresh install must not create sets")
	_, err = s.Get(ctx, KeyMigration)
	assert.NoError(t, err)
}

func TestMigrateLegacy_StructureOnlySetsUntouched(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const clean = `[{"id":"s1","name":"One","cards":[{"id":"c1","question":"2 x 2","answer":4}]}]`
	require.NoError(t, s.Set(ctx, KeyMathSets, clean))

	res, err := MigrateLegacy(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, res.SetsRewritten)

	raw, err := s.Get(ctx, KeyMathSets)
	require.NoError(t, err)
	assert.Equal(t, clean, raw)
	_, err = s.Get(ctx, ProgressKey(LegacyUser))
	assert.ErrorIs(t, err, ErrNotFound)
}
