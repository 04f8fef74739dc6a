package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCacheSetGet(t *testing.T) {
	c, err := NewResponseCache(Config{TTL: time.Minute, MaxCost: 1 << 20})
	require.NoError(t, err)
	defer c.Close()

	c.Set("Store:{\"uri\":\"a\"}", []byte(`{"store":{"name":"A"}}`))
	c.Wait()

	got, ok := c.Get("Store:{\"uri\":\"a\"}")
	require.True(t, ok)
	assert.JSONEq(t, `{"store":{"name":"A"}}`, string(got))

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestResponseCacheExpires(t *testing.T) {
	c, err := NewResponseCache(Config{TTL: 50 * time.Millisecond, MaxCost: 1 << 20})
	require.NoError(t, err)
	defer c.Close()

	c.Set("FeaturedStores:null", []byte(`{"featuredStores":[]}`))
	c.Wait()
	_, ok := c.Get("FeaturedStores:null")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := c.Get("FeaturedStores:null")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestResponseCacheRejectsOversizedValue(t *testing.T) {
	c, err := NewResponseCache(Config{TTL: time.Minute, MaxCost: 64})
	require.NoError(t, err)
	defer c.Close()

	c.Set("big", make([]byte, 1024))
	c.Wait()
	_, ok := c.Get("big")
	assert.False(t, ok)
}
