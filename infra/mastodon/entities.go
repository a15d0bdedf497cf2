package mastodon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// mastodonStatus is the subset of Mastodon's Status entity we care about.
type mastodonStatus struct {
	ID              string              `json:"id"`
	Content         string              `json:"content"` // HTML
	CreatedAt       string              `json:"created_at"`
	URL             string              `json:"url"`
	Account         mastodonAccount     `json:"account"`
	Sensitive       bool                `json:"sensitive"`
	SpoilerText     string              `json:"spoiler_text"`
	Favourited      bool                `json:"favourited"`
	Bookmarked      bool                `json:"bookmarked"`
	Pinned          bool                `json:"pinned"`
	Reblogged       bool                `json:"reblogged"`
	FavouritesCount int                 `json:"favourites_count"`
	ReblogsCount    int                 `json:"reblogs_count"`
	RepliesCount    int                 `json:"replies_count"`
	InReplyToID     *string             `json:"in_reply_to_id"`
	Poll            *mastodonPoll       `json:"poll"`
	Filtered        []mastodonFilterHit `json:"filtered"`
	Reblog          *mastodonStatus     `json:"reblog"`
}

type mastodonAccount struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

type mastodonPoll struct {
	ID         string `json:"id"`
	ExpiresAt  string `json:"expires_at"`
	Expired    bool   `json:"expired"`
	Multiple   bool   `json:"multiple"`
	VotesCount int    `json:"votes_count"`
	Options    []struct {
		Title      string `json:"title"`
		VotesCount *int   `json:"votes_count"`
	} `json:"options"`
	Voted    bool  `json:"voted"`
	OwnVotes []int `json:"own_votes"`
}

type mastodonFilter struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Context      []string `json:"context"`
	ExpiresAt    string   `json:"expires_at"`
	FilterAction string   `json:"filter_action"`
	Keywords     []struct {
		Keyword   string `json:"keyword"`
		WholeWord bool   `json:"whole_word"`
	} `json:"keywords"`
}

type mastodonFilterHit struct {
	Filter         mastodonFilter `json:"filter"`
	KeywordMatches []string       `json:"keyword_matches"`
}

type mastodonTag struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	History []struct {
		Day      string `json:"day"`
		Uses     string `json:"uses"`
		Accounts string `json:"accounts"`
	} `json:"history"`
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func mapAccount(a mastodonAccount) domain.Account {
	return domain.Account{
		ID:          a.ID,
		Acct:        sanitizeForTerminal(a.Acct),
		Username:    sanitizeForTerminal(a.Username),
		DisplayName: sanitizeForTerminal(a.DisplayName),
		URL:         sanitizeForTerminal(a.URL),
	}
}

func mapStatus(st mastodonStatus) domain.Status {
	s := domain.Status{
		ID:              st.ID,
		URL:             sanitizeForTerminal(st.URL),
		Account:         mapAccount(st.Account),
		Content:         stripHTML(st.Content),
		CreatedAt:       parseTime(st.CreatedAt),
		Sensitive:       st.Sensitive,
		SpoilerText:     sanitizeForTerminal(st.SpoilerText),
		Favourited:      st.Favourited,
		Bookmarked:      st.Bookmarked,
		Pinned:          st.Pinned,
		Reblogged:       st.Reblogged,
		FavouritesCount: st.FavouritesCount,
		ReblogsCount:    st.ReblogsCount,
		RepliesCount:    st.RepliesCount,
	}
	if st.InReplyToID != nil {
		s.InReplyToID = *st.InReplyToID
	}
	if st.Poll != nil {
		p := mapPoll(*st.Poll)
		s.Poll = &p
	}
	for _, hit := range st.Filtered {
		s.Filtered = append(s.Filtered, domain.FilterResult{
			Filter:         mapFilter(hit.Filter),
			KeywordMatches: hit.KeywordMatches,
		})
	}
	if st.Reblog != nil {
		inner := mapStatus(*st.Reblog)
		s.Reblog = &inner
	}
	return s
}

func mapStatuses(statuses []mastodonStatus) []domain.Status {
	out := make([]domain.Status, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, mapStatus(st))
	}
	return out
}

func mapPoll(p mastodonPoll) domain.Poll {
	out := domain.Poll{
		ID:         p.ID,
		ExpiresAt:  parseTime(p.ExpiresAt),
		Expired:    p.Expired,
		Multiple:   p.Multiple,
		VotesCount: p.VotesCount,
		Voted:      p.Voted,
		OwnVotes:   p.OwnVotes,
	}
	for _, o := range p.Options {
		opt := domain.PollOption{Title: sanitizeForTerminal(o.Title)}
		// Hidden until the poll ends on some servers.
		if o.VotesCount != nil {
			opt.VotesCount = *o.VotesCount
		}
		out.Options = append(out.Options, opt)
	}
	return out
}

func mapFilter(f mastodonFilter) domain.FilterRule {
	r := domain.FilterRule{
		ID:        f.ID,
		Title:     sanitizeForTerminal(f.Title),
		Action:    domain.ParseFilterAction(f.FilterAction),
		ExpiresAt: parseTime(f.ExpiresAt),
	}
	for _, c := range f.Context {
		r.Contexts = append(r.Contexts, domain.FilterContext(c))
	}
	for _, k := range f.Keywords {
		r.Keywords = append(r.Keywords, domain.FilterKeyword{Keyword: k.Keyword, WholeWord: k.WholeWord})
	}
	return r
}

func mapTag(t mastodonTag) domain.Tag {
	out := domain.Tag{Name: sanitizeForTerminal(t.Name), URL: sanitizeForTerminal(t.URL)}
	for _, h := range t.History {
		uses, _ := strconv.ParseInt(strings.TrimSpace(h.Uses), 10, 64)
		accounts, _ := strconv.ParseInt(strings.TrimSpace(h.Accounts), 10, 64)
		out.History = append(out.History, domain.TagHistory{Day: h.Day, Uses: uses, Accounts: accounts})
	}
	return out
}

// decode unmarshals an API body, classifying failures as other errors.
func decode(op string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return domain.OtherError(op, fmt.Errorf("parsing response: %w", err))
	}
	return nil
}
