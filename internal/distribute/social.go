package distribute

import (
	"context"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/pkg/facebook"
	"github.com/mediareach/press-cli/pkg/linkedin"
	"github.com/mediareach/press-cli/pkg/twitter"
)

// Social platform keys as they appear in post reports.
const (
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformFacebook = "facebook"
)

// Poster publishes a message to the configured social networks. Nil clients
// mark a platform as unconfigured.
type Poster struct {
	twitter  twitter.Client
	linkedin linkedin.Client
	facebook facebook.Client
}

// NewPoster creates a Poster. Any client may be nil.
func NewPoster(tw twitter.Client, li linkedin.Client, fb facebook.Client) *Poster {
	return &Poster{twitter: tw, linkedin: li, facebook: fb}
}

// Configured returns how many platforms have a client.
func (p *Poster) Configured() int {
	n := 0
	if p.twitter != nil {
		n++
	}
	if p.linkedin != nil {
		n++
	}
	if p.facebook != nil {
		n++
	}
	return n
}

// PostAll publishes the message to every configured platform and reports the
// outcome per platform. The report always carries all three keys;
// unconfigured platforms stay false.
func (p *Poster) PostAll(ctx context.Context, message string) map[string]bool {
	log := zap.L()
	results := map[string]bool{
		PlatformTwitter:  false,
		PlatformLinkedIn: false,
		PlatformFacebook: false,
	}

	post := func(platform string, fn func(context.Context, string) error) {
		if err := fn(ctx, message); err != nil {
			log.Warn("social post failed", zap.String("platform", platform), zap.Error(err))
			return
		}
		log.Info("social post published", zap.String("platform", platform))
		results[platform] = true
	}

	if p.twitter != nil {
		post(PlatformTwitter, p.twitter.Post)
	}
	if p.linkedin != nil {
		post(PlatformLinkedIn, p.linkedin.Post)
	}
	if p.facebook != nil {
		post(PlatformFacebook, p.facebook.Post)
	}
	return results
}
