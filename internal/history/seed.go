package history

import (
	"time"

	"github.com/iyunix/go-kbshell/internal/domain"
)

// SeedChats is the example list shown before anything has been persisted.
func SeedChats(now time.Time) []domain.ChatItem {
	now = now.UTC()
	return []domain.ChatItem{
		{
			ID:         "seed-1",
			Title:      "Getting started with the knowledge base",
			Date:       now,
			IsFavorite: true,
		},
		{
			ID:    "seed-2",
			Title: "Summarize the Q3 onboarding guide",
			Date:  now.Add(-24 * time.Hour),
		},
		{
			ID:        "seed-3",
			Title:     "Which documents mention data retention?",
			Date:      now.Add(-7 * 24 * time.Hour),
			Thumbnail: "/static/img/document.svg",
		},
	}
}
