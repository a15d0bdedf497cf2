package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/timeline"
	"github.com/CrestNiraj12/fedtimeline/trending"
)

// printPages writes up to n pages of the cache to w. A pager invalidated by
// a relayed event is reopened at the page it was about to load.
func printPages(ctx context.Context, w io.Writer, c *timeline.Cache, n int) error {
	cursor := ""
	pager := c.Open(cursor)
	for i := 0; i < n; {
		res := pager.Load(ctx)
		if errors.Is(res.Err(), timeline.ErrStale) {
			pager = c.Open(cursor)
			continue
		}
		if res.State == domain.ResourceError {
			return res.Err()
		}
		page := res.Data
		if len(page.Items) == 0 && page.NextKey == "" {
			if i == 0 {
				fmt.Fprintln(w, "(no statuses)")
			}
			return nil
		}
		fmt.Fprintf(w, "── page %d ──\n", i+1)
		for _, item := range page.Items {
			printStatus(w, item)
		}
		if page.NextKey == "" {
			return nil
		}
		cursor = page.NextKey
		i++
	}
	return nil
}

func printStatus(w io.Writer, v domain.StatusViewData) {
	s := v.Status
	target := s.Actionable()

	header := fmt.Sprintf("[%s] %s (@%s)", target.ID, target.Account.Name(), target.Account.Acct)
	if s.Reblog != nil {
		header += fmt.Sprintf(" boosted by @%s", s.Account.Acct)
	}
	if flags := statusFlags(target); flags != "" {
		header += " " + flags
	}
	fmt.Fprintln(w, header)

	if v.Filter == domain.FilterWarn {
		fmt.Fprintf(w, "  filtered: %s\n\n", v.FilterTitle)
		return
	}
	if target.SpoilerText != "" {
		fmt.Fprintf(w, "  CW: %s\n", target.SpoilerText)
		if !v.View.Expanded {
			fmt.Fprintln(w)
			return
		}
	}
	if target.Sensitive && !v.View.ContentShown {
		fmt.Fprintln(w, "  (sensitive)")
	}
	for _, line := range strings.Split(target.Content, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if p := target.Poll; p != nil {
		for i, o := range p.Options {
			fmt.Fprintf(w, "  %d) %s (%d)\n", i+1, o.Title, o.VotesCount)
		}
	}
	fmt.Fprintf(w, "  ♥ %d  ⟲ %d  ↩ %d\n\n", target.FavouritesCount, target.ReblogsCount, target.RepliesCount)
}

func statusFlags(s domain.Status) string {
	var flags []string
	if s.Favourited {
		flags = append(flags, "fav")
	}
	if s.Reblogged {
		flags = append(flags, "boosted")
	}
	if s.Bookmarked {
		flags = append(flags, "bookmarked")
	}
	if s.Pinned {
		flags = append(flags, "pinned")
	}
	if len(flags) == 0 {
		return ""
	}
	return "[" + strings.Join(flags, ",") + "]"
}

func printTrending(w io.Writer, snap trending.Snapshot, limit int) {
	switch snap.State {
	case trending.StateErrorNetwork, trending.StateErrorOther:
		fmt.Fprintf(w, "trending: %s\n", domain.ErrorMessage(snap.Err))
		return
	case trending.StateLoaded:
	default:
		return
	}
	fmt.Fprintln(w, "── trending ──")
	if len(snap.Tags) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for i, t := range snap.Tags {
		if i == limit {
			break
		}
		fmt.Fprintf(w, "#%s  %d uses\n", t.Name, t.Uses())
	}
}
