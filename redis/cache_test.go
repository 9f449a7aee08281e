package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JoelJacobStephen/litxplore/log"
)

func TestArtifactKey(t *testing.T) {
	tts := map[string]struct {
		key      string
		expected string
	}{
		"base": {
			key:      ArtifactKey("ab12cd34", "1.0.0", "gemini-2.0-flash"),
			expected: "artifact:ab12cd34:1.0.0:gemini-2.0-flash",
		},
		"subkind": {
			key:      ArtifactKey("ab12cd34", "1.0.0", "gemini-2.0-flash", "key_insights"),
			expected: "artifact:ab12cd34:1.0.0:gemini-2.0-flash:key_insights",
		},
	}

	for name, tt := range tts {
		assert.Equal(t, tt.expected, tt.key, name)
	}
}

func TestArtifactKey_VersionBumpChangesKey(t *testing.T) {
	old := ArtifactKey("ab12cd34", "1.0.0", "gemini-2.0-flash")
	bumped := ArtifactKey("ab12cd34", "1.1.0", "gemini-2.0-flash")
	assert.NotEqual(t, old, bumped)
}

// The cache must degrade to misses and no-op writes when the backing
// store is unreachable.
func TestCache_Unreachable(t *testing.T) {
	cache := NewCache("127.0.0.1:1", "", 0, log.New("test"))
	defer cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cache.Put(ctx, "artifact:x:1:m", []byte(`{"a":1}`), time.Minute)

	data, ok := cache.Get(ctx, "artifact:x:1:m")
	assert.False(t, ok)
	assert.Nil(t, data)
}
