package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestNewConfigStoreFrom(t *testing.T) {
	seed := map[string]any{"providers.gmail.query": "is:inbox"}
	store := NewConfigStoreFrom(seed)
	seed["providers.gmail.query"] = "changed"

	assert.Equal(t, "is:inbox", store.GetString("providers.gmail.query"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	t.Setenv("HUB_TEST_TOKEN", "s3cret")

	store := NewConfigStoreFrom(map[string]any{
		"str":       "plain",
		"env":       "${HUB_TEST_TOKEN}",
		"bare":      "$HUB_TEST_TOKEN",
		"int":       int64(42),
		"int_str":   "7",
		"float":     2.5,
		"float_int": int64(3),
		"bool":      true,
		"bool_str":  "true",
		"dur":       "45s",
		"dur_secs":  int64(90),
		"dur_bad":   "soon",
		"list":      []any{"a", "b"},
		"csv":       "x, y,,z",
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "plain"},
		{"env expansion", store.GetString("env"), "s3cret"},
		{"bare dollar untouched", store.GetString("bare"), "$HUB_TEST_TOKEN"},
		{"string wrong type", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 42},
		{"int from string", store.GetInt("int_str"), 7},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("float"), 2.5},
		{"float widened", store.GetFloat("float_int"), 3.0},
		{"bool", store.GetBool("bool"), true},
		{"bool from string", store.GetBool("bool_str"), true},
		{"bool wrong type", store.GetBool("str"), false},
		{"duration", store.GetDuration("dur", time.Second), 45 * time.Second},
		{"duration seconds", store.GetDuration("dur_secs", time.Second), 90 * time.Second},
		{"duration invalid", store.GetDuration("dur_bad", time.Second), time.Second},
		{"duration missing", store.GetDuration("missing", 2*time.Second), 2 * time.Second},
		{"slice", store.GetStringSlice("list"), []string{"a", "b"}},
		{"slice csv", store.GetStringSlice("csv"), []string{"x", "y", "z"}},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"providers.gmail.client_id":  "id",
		"providers.gmail.enabled":    true,
		"providers.notion.token":     "t",
		"middleware.retry.max":       int64(3),
		"providers.gmailx.something": "x",
	})

	assert.Equal(t, []string{"client_id", "enabled"}, store.Keys("providers.gmail."))
	assert.Len(t, store.Keys(""), 5)
	assert.Empty(t, store.Keys("nothing."))
}

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var store driven.ConfigStore = NewConfigStore()
	require.NoError(t, store.Set("a.b", 1))
	assert.Equal(t, 1, store.GetInt("a.b"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("k.%d", i), i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Keys("k.")
			_ = store.GetInt("k.0")
		}()
	}
	wg.Wait()

	assert.Len(t, store.Keys("k."), 50)
}
