package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPlan struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)

	c.Set(ctx, "plan:1", &cachedPlan{ID: "1", Title: "Starter"}, 0)

	value, ok := c.Get(ctx, "plan:1")
	require.True(t, ok)
	plan, ok := UnmarshalCacheValue[cachedPlan](value)
	require.True(t, ok)
	assert.Equal(t, "Starter", plan.Title)

	c.Delete(ctx, "plan:1")
	_, ok = c.Get(ctx, "plan:1")
	assert.False(t, ok)
}

func TestInMemoryCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)

	c.Set(ctx, "plan:1", "a", 0)
	c.Set(ctx, "plan:list:active", "b", 0)
	c.Set(ctx, "other:1", "c", 0)

	c.DeleteByPrefix(ctx, PrefixPlan)

	_, ok := c.Get(ctx, "plan:1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "plan:list:active")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "other:1")
	assert.True(t, ok)
}

func TestUnmarshalCacheValue(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		wantOK bool
		title  string
	}{
		{name: "pointer from memory", value: &cachedPlan{Title: "Pro"}, wantOK: true, title: "Pro"},
		{name: "json from redis", value: `{"id":"2","title":"Enterprise"}`, wantOK: true, title: "Enterprise"},
		{name: "broken json", value: `{"id":`, wantOK: false},
		{name: "nil", value: nil, wantOK: false},
		{name: "wrong type", value: 42, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UnmarshalCacheValue[cachedPlan](tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.title, got.Title)
			}
		})
	}
}
