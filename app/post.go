package app

import (
	"context"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// StatusActions performs engagement actions on a status.
type StatusActions interface {
	// Favourite favourites or unfavourites a status.
	Favourite(ctx context.Context, id string, on bool) (domain.Status, error)

	// Bookmark bookmarks or unbookmarks a status.
	Bookmark(ctx context.Context, id string, on bool) (domain.Status, error)

	// Reblog boosts or unboosts a status.
	Reblog(ctx context.Context, id string, on bool) (domain.Status, error)

	// Pin pins or unpins one of the user's statuses on their profile.
	Pin(ctx context.Context, id string, on bool) (domain.Status, error)

	// VoteInPoll records choices and returns the updated poll.
	VoteInPoll(ctx context.Context, pollID string, choices []int) (domain.Poll, error)

	// Delete removes one of the user's statuses.
	Delete(ctx context.Context, id string) error
}
