package domain

import (
	"fmt"
	"strings"
)

// TimelineKind selects the remote collection a cache reads from.
type TimelineKind int

const (
	TimelineHome TimelineKind = iota
	TimelineLocal
	TimelineFederated
	TimelineHashtag
	TimelineAccount
	TimelineAccountWithReplies
	TimelineAccountPinned
	TimelineList
	TimelineBookmarks
	TimelineFavourites
	TimelineTrending
)

var timelineKindNames = map[TimelineKind]string{
	TimelineHome:               "home",
	TimelineLocal:              "local",
	TimelineFederated:          "federated",
	TimelineHashtag:            "tag",
	TimelineAccount:            "account",
	TimelineAccountWithReplies: "account-replies",
	TimelineAccountPinned:      "account-pinned",
	TimelineList:               "list",
	TimelineBookmarks:          "bookmarks",
	TimelineFavourites:         "favourites",
	TimelineTrending:           "trending",
}

func (k TimelineKind) String() string {
	if n, ok := timelineKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("timeline(%d)", int(k))
}

// Timeline identifies one remote collection. It is immutable for the
// lifetime of a cache.
type Timeline struct {
	Kind TimelineKind
	ID   string   // Account or list id for the kinds that need one
	Tags []string // First tag is the path tag, the rest are sent as any[]
}

// Home is the authenticated user's home timeline.
func Home() Timeline { return Timeline{Kind: TimelineHome} }

// Hashtag builds a hashtag timeline over one or more tags.
func Hashtag(tags ...string) Timeline {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t != "" {
			clean = append(clean, t)
		}
	}
	return Timeline{Kind: TimelineHashtag, Tags: clean}
}

// AccountStatuses is the timeline of one account without replies.
func AccountStatuses(accountID string) Timeline {
	return Timeline{Kind: TimelineAccount, ID: accountID}
}

// List is the timeline of one of the user's lists.
func List(listID string) Timeline { return Timeline{Kind: TimelineList, ID: listID} }

// Key is a stable string form used in logs, metrics and persisted state.
// ParseTimeline(t.Key()) returns t.
func (t Timeline) Key() string {
	switch t.Kind {
	case TimelineHashtag:
		return t.Kind.String() + ":" + strings.Join(t.Tags, ",")
	case TimelineAccount, TimelineAccountWithReplies, TimelineAccountPinned, TimelineList:
		return t.Kind.String() + ":" + t.ID
	default:
		return t.Kind.String()
	}
}

// FilterContext is the filter context statuses of this timeline are
// evaluated against.
func (t Timeline) FilterContext() FilterContext {
	switch t.Kind {
	case TimelineHome, TimelineList:
		return FilterContextHome
	case TimelineAccount, TimelineAccountWithReplies, TimelineAccountPinned:
		return FilterContextAccount
	default:
		return FilterContextPublic
	}
}

// ParseTimeline reads the Key() form, e.g. "home", "tag:golang,rust",
// "account:123", "list:42".
func ParseTimeline(s string) (Timeline, error) {
	s = strings.TrimSpace(s)
	name, arg, _ := strings.Cut(s, ":")
	name = strings.ToLower(name)
	for kind, n := range timelineKindNames {
		if n != name {
			continue
		}
		switch kind {
		case TimelineHashtag:
			tl := Hashtag(strings.Split(arg, ",")...)
			if len(tl.Tags) == 0 {
				return Timeline{}, fmt.Errorf("%w: %q needs at least one tag", ErrInvalidTimeline, s)
			}
			return tl, nil
		case TimelineAccount, TimelineAccountWithReplies, TimelineAccountPinned, TimelineList:
			arg = strings.TrimSpace(arg)
			if arg == "" {
				return Timeline{}, fmt.Errorf("%w: %q needs an id", ErrInvalidTimeline, s)
			}
			return Timeline{Kind: kind, ID: arg}, nil
		default:
			return Timeline{Kind: kind}, nil
		}
	}
	return Timeline{}, fmt.Errorf("%w: %q", ErrInvalidTimeline, s)
}
