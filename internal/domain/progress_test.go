package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostingProgress_Deterministic(t *testing.T) {
	ids := []string{"host-1", "host-2", "book-V1StGXR8_Z5jdHi6B-myT", ""}
	for _, id := range ids {
		first := HostingProgress(id)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, HostingProgress(id), "id %q must be stable", id)
		}
	}
}

func TestHostingProgress_Range(t *testing.T) {
	ids := []string{"host-1", "host-2", "circ-1", "circ-2", "原子习惯", "a", ""}
	for _, id := range ids {
		p := HostingProgress(id)
		assert.GreaterOrEqual(t, p, 20, "id %q", id)
		assert.LessOrEqual(t, p, 85, "id %q", id)
	}
}

func TestHostedBook_MatchesQuery(t *testing.T) {
	b := &HostedBook{Title: "原子习惯", Author: "James Clear", Nickname: "习惯大师"}

	assert.True(t, b.MatchesQuery(""))
	assert.True(t, b.MatchesQuery("原子"))
	assert.True(t, b.MatchesQuery("james"))
	assert.True(t, b.MatchesQuery("CLEAR"))
	assert.True(t, b.MatchesQuery("大师"))
	assert.False(t, b.MatchesQuery("沙丘"))
}
