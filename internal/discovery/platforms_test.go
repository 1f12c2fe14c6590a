package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevantPlatforms(t *testing.T) {
	tech := relevantPlatforms([]string{"intelligenza artificiale", "tecnologia"})
	assert.Contains(t, tech, "techcrunch.com")
	assert.NotContains(t, tech, "bloomberg.com")

	mixed := relevantPlatforms([]string{"tecnologia", "finanza"})
	assert.Contains(t, mixed, "techcrunch.com")
	assert.Contains(t, mixed, "bloomberg.com")

	fallback := relevantPlatforms([]string{"giardinaggio"})
	assert.Equal(t, defaultPlatforms, fallback)
}

func TestPlatformFor(t *testing.T) {
	platforms := []string{"techcrunch.com", "wired.com"}
	assert.Equal(t, "wired.com", platformFor("https://www.WIRED.com/story/ai", platforms))
	assert.Equal(t, "unknown", platformFor("https://example.org/post", platforms))
}
