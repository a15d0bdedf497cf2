package domain

import (
	"net/url"
	"strings"
	"time"
)

// Account is the author of a status.
type Account struct {
	ID          string
	Acct        string // "user" for local accounts, "user@host" for remote ones
	Username    string
	DisplayName string
	URL         string // Profile URL on the origin instance
}

// Instance returns the host the account lives on. Local accounts whose URL
// cannot be parsed yield an empty string.
func (a Account) Instance() string {
	if a.URL != "" {
		if u, err := url.Parse(a.URL); err == nil && u.Host != "" {
			return strings.ToLower(u.Hostname())
		}
	}
	if i := strings.LastIndex(a.Acct, "@"); i >= 0 && i < len(a.Acct)-1 {
		return strings.ToLower(a.Acct[i+1:])
	}
	return ""
}

// Name returns the display name, falling back to acct.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Acct
}

// Status is a single post fetched from a timeline.
type Status struct {
	ID        string
	URL       string
	Account   Account
	Content   string // Plain text, HTML stripped
	CreatedAt time.Time

	Sensitive   bool
	SpoilerText string

	Favourited bool
	Bookmarked bool
	Pinned     bool
	Reblogged  bool

	FavouritesCount int
	ReblogsCount    int
	RepliesCount    int

	InReplyToID string
	Poll        *Poll
	Filtered    []FilterResult // Server-side filter matches, if any

	// Reblog is the boosted status when this status is a reblog wrapper.
	Reblog *Status
}

// Actionable returns the status that user actions apply to: the reblogged
// status for a boost, the status itself otherwise.
func (s Status) Actionable() Status {
	if s.Reblog != nil {
		return *s.Reblog
	}
	return s
}

// ActionableID is the id of Actionable().
func (s Status) ActionableID() string {
	if s.Reblog != nil {
		return s.Reblog.ID
	}
	return s.ID
}

// IsReply reports whether the actionable status answers another one.
func (s Status) IsReply() bool {
	return s.Actionable().InReplyToID != ""
}

// WithActionable returns a copy of s whose actionable status has been
// replaced by the result of fn. The outer wrapper is left untouched for boosts.
func (s Status) WithActionable(fn func(Status) Status) Status {
	if s.Reblog != nil {
		inner := fn(*s.Reblog)
		s.Reblog = &inner
		return s
	}
	return fn(s)
}

// Clone returns a deep copy so cached values never alias caller data.
func (s Status) Clone() Status {
	if s.Poll != nil {
		p := s.Poll.Clone()
		s.Poll = &p
	}
	if s.Filtered != nil {
		s.Filtered = append([]FilterResult(nil), s.Filtered...)
	}
	if s.Reblog != nil {
		r := s.Reblog.Clone()
		s.Reblog = &r
	}
	return s
}

// PollOption is one answer of a poll.
type PollOption struct {
	Title      string
	VotesCount int
}

// Poll is attached to a status.
type Poll struct {
	ID         string
	ExpiresAt  time.Time
	Expired    bool
	Multiple   bool
	VotesCount int
	Options    []PollOption
	Voted      bool
	OwnVotes   []int
}

// Clone copies the option and vote slices.
func (p Poll) Clone() Poll {
	p.Options = append([]PollOption(nil), p.Options...)
	p.OwnVotes = append([]int(nil), p.OwnVotes...)
	return p
}

// Vote returns a copy of the poll with choices counted as the user's vote.
// Out of range choices are ignored.
func (p Poll) Vote(choices []int) Poll {
	out := p.Clone()
	own := make([]int, 0, len(choices))
	for _, c := range choices {
		if c < 0 || c >= len(out.Options) {
			continue
		}
		out.Options[c].VotesCount++
		own = append(own, c)
	}
	out.VotesCount += len(own)
	out.OwnVotes = own
	out.Voted = true
	return out
}
