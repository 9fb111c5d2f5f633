// File: internal/domain/chat.go
package domain

import "time"

// ChatItem is one entry of the user's visible chat history.
type ChatItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	IsFavorite bool      `json:"isFavorite,omitempty"`
}

// ChatInput carries the caller-supplied fields of a new ChatItem.
type ChatInput struct {
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	IsFavorite bool   `json:"isFavorite,omitempty"`
}
