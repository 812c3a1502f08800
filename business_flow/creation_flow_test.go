package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The leaderboard cache must only hold pages that vote and creation
// changes invalidate, otherwise a cached page can serve stale counts
// for its full TTL after a vote.
func TestCacheableLeaderboardPage(t *testing.T) {
	cached := []struct{ limit, offset int }{
		{50, 0},
		{100, 0},
	}
	for _, p := range cached {
		assert.True(t, cacheableLeaderboardPage(p.limit, p.offset), "limit=%d offset=%d", p.limit, p.offset)
	}

	uncached := []struct{ limit, offset int }{
		{10, 0},
		{50, 50},
		{100, 100},
		{25, 25},
	}
	for _, p := range uncached {
		assert.False(t, cacheableLeaderboardPage(p.limit, p.offset), "limit=%d offset=%d", p.limit, p.offset)
	}

	// The cacheable pages are exactly the keys invalidateLeaderboardCache drops.
	s := &CreationFlowImpl{}
	assert.Equal(t, "leaderboard:50:0", s.leaderboardCacheKey(50, 0))
	assert.Equal(t, "leaderboard:100:0", s.leaderboardCacheKey(100, 0))
}
