package eventbus

import "github.com/CrestNiraj12/fedtimeline/domain"

// Event is a typed notification. The set of events is closed.
type Event interface {
	// Name identifies the event type on the wire.
	Name() string
}

// FavouriteEvent reports the favourite state of a status.
type FavouriteEvent struct {
	StatusID   string `json:"status_id"`
	Favourited bool   `json:"favourited"`
}

// ReblogEvent reports the boost state of a status.
type ReblogEvent struct {
	StatusID  string `json:"status_id"`
	Reblogged bool   `json:"reblogged"`
}

// BookmarkEvent reports the bookmark state of a status.
type BookmarkEvent struct {
	StatusID   string `json:"status_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// PinEvent reports the pinned state of a status.
type PinEvent struct {
	StatusID string `json:"status_id"`
	Pinned   bool   `json:"pinned"`
}

// PollVoteEvent carries the poll as it is after the user's vote.
type PollVoteEvent struct {
	StatusID string      `json:"status_id"`
	Poll     domain.Poll `json:"poll"`
}

// StatusDeletedEvent reports a status removed by its author.
type StatusDeletedEvent struct {
	StatusID string `json:"status_id"`
}

// StatusEditedEvent carries the new version of an edited status.
type StatusEditedEvent struct {
	Status domain.Status `json:"status"`
}

// BlockEvent reports an account the user blocked.
type BlockEvent struct {
	AccountID string `json:"account_id"`
}

// MuteEvent reports an account the user muted.
type MuteEvent struct {
	AccountID string `json:"account_id"`
}

// DomainMuteEvent reports a federated instance the user hid.
type DomainMuteEvent struct {
	Instance string `json:"instance"`
}

// UnfollowEvent reports an account the user stopped following.
type UnfollowEvent struct {
	AccountID string `json:"account_id"`
}

// PreferencesChangedEvent carries the new display preferences.
type PreferencesChangedEvent struct {
	Preferences domain.DisplayPreferences `json:"preferences"`
}

// FiltersChangedEvent reports that the user's filters were edited.
type FiltersChangedEvent struct{}

func (FavouriteEvent) Name() string          { return "favourite" }
func (ReblogEvent) Name() string             { return "reblog" }
func (BookmarkEvent) Name() string           { return "bookmark" }
func (PinEvent) Name() string                { return "pin" }
func (PollVoteEvent) Name() string           { return "poll_vote" }
func (StatusDeletedEvent) Name() string      { return "status_deleted" }
func (StatusEditedEvent) Name() string       { return "status_edited" }
func (BlockEvent) Name() string              { return "block" }
func (MuteEvent) Name() string               { return "mute" }
func (DomainMuteEvent) Name() string         { return "domain_mute" }
func (UnfollowEvent) Name() string           { return "unfollow" }
func (PreferencesChangedEvent) Name() string { return "preferences_changed" }
func (FiltersChangedEvent) Name() string     { return "filters_changed" }
