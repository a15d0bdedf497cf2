// Package filter decides whether a status is shown, shown behind a warning
// or hidden, based on the user's filters.
package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
)

type compiledRule struct {
	rule    domain.FilterRule
	pattern *regexp.Regexp // nil when the rule has no keywords
}

// Evaluator applies server-side filter results attached to statuses and
// client-side keyword rules. Rules can be swapped at runtime with Update.
type Evaluator struct {
	mu    sync.RWMutex
	rules []compiledRule
	now   func() time.Time
}

// New compiles rules into an evaluator.
func New(rules []domain.FilterRule) *Evaluator {
	e := &Evaluator{now: time.Now}
	e.Update(rules)
	return e
}

// Update replaces the rule set.
func (e *Evaluator) Update(rules []domain.FilterRule) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{rule: r, pattern: keywordPattern(r.Keywords)})
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
}

// Refresh fetches the rules from src and installs them.
func (e *Evaluator) Refresh(ctx context.Context, src app.FilterFetcher) error {
	rules, err := src.FetchFilters(ctx)
	if err != nil {
		return fmt.Errorf("refreshing filters: %w", err)
	}
	e.Update(rules)
	return nil
}

// Evaluate returns the strongest action of every filter matching the
// actionable status in fctx.
func (e *Evaluator) Evaluate(s domain.Status, fctx domain.FilterContext) domain.FilterVerdict {
	target := s.Actionable()
	now := e.now()

	var v domain.FilterVerdict
	consider := func(action domain.FilterAction, title string) {
		if action > v.Action {
			v = domain.FilterVerdict{Action: action, Title: title}
		}
	}

	for _, res := range target.Filtered {
		if res.Filter.AppliesTo(fctx, now) {
			consider(res.Filter.Action, res.Filter.Title)
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.rules) == 0 {
		return v
	}
	text := searchableText(target)
	for _, cr := range e.rules {
		if cr.pattern == nil || !cr.rule.AppliesTo(fctx, now) {
			continue
		}
		if cr.pattern.MatchString(text) {
			consider(cr.rule.Action, cr.rule.Title)
		}
	}
	return v
}

// searchableText joins every user-visible text field of a status.
func searchableText(s domain.Status) string {
	parts := []string{s.SpoilerText, s.Content}
	if s.Poll != nil {
		for _, o := range s.Poll.Options {
			parts = append(parts, o.Title)
		}
	}
	return strings.Join(parts, "\n")
}

// keywordPattern builds one case-insensitive alternation over keywords.
// Whole-word keywords get a boundary on each side where the keyword itself
// starts or ends with a word character.
func keywordPattern(keywords []domain.FilterKeyword) *regexp.Regexp {
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		kw := strings.TrimSpace(k.Keyword)
		if kw == "" {
			continue
		}
		q := regexp.QuoteMeta(kw)
		if k.WholeWord {
			if isWordRune(firstRune(kw)) {
				q = `(?:^|[^\p{L}\p{N}_])` + q
			}
			if isWordRune(lastRune(kw)) {
				q += `(?:[^\p{L}\p{N}_]|$)`
			}
		}
		alts = append(alts, q)
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
