package knowledge

import (
	"strings"
	"time"

	types "github.com/yungbote/constella-backend/internal/domain"
)

const DefaultFreshnessMonths = 3

type StalenessPolicy struct {
	FreshnessMonths int
}

// NeedsRegeneration is true when there is no topic, no article in the
// requested language, an empty article, or one older than the window.
func (p StalenessPolicy) NeedsRegeneration(topic *types.Topic, article *types.Article, now time.Time) bool {
	if topic == nil || article == nil {
		return true
	}
	if strings.TrimSpace(article.Content) == "" {
		return true
	}
	months := p.FreshnessMonths
	if months <= 0 {
		months = DefaultFreshnessMonths
	}
	return article.UpdatedAt.Before(now.AddDate(0, -months, 0))
}

func NeedsRegeneration(topic *types.Topic, article *types.Article, now time.Time) bool {
	return StalenessPolicy{}.NeedsRegeneration(topic, article, now)
}
