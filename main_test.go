package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/filter"
	"github.com/CrestNiraj12/fedtimeline/infra/config"
	"github.com/CrestNiraj12/fedtimeline/timeline"
	"github.com/CrestNiraj12/fedtimeline/trending"
)

func TestParseCLIArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mode cliMode
		msg  string
	}{
		{name: "run default", args: nil, mode: cliRun},
		{name: "run timeline", args: []string{"tag:golang"}, mode: cliRun, msg: "tag:golang"},
		{name: "version long", args: []string{"--version"}, mode: cliVersion},
		{name: "version short", args: []string{"-v"}, mode: cliVersion},
		{name: "version single-dash", args: []string{"-version"}, mode: cliVersion},
		{name: "help long", args: []string{"--help"}, mode: cliHelp},
		{name: "help short", args: []string{"-h"}, mode: cliHelp},
		{name: "help word", args: []string{"help"}, mode: cliHelp},
		{name: "invalid flag", args: []string{"--bogus"}, mode: cliInvalid, msg: "unexpected argument: --bogus"},
		{name: "invalid flags", args: []string{"--bogus", "--pogus"}, mode: cliInvalid, msg: "unexpected argument: --bogus --pogus"},
		{name: "two timelines", args: []string{"home", "local"}, mode: cliInvalid, msg: "unexpected argument: home local"},
		{name: "too many args", args: []string{"--version", "extra"}, mode: cliVersion},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mode, msg := parseCLIArgs(tc.args)
			if mode != tc.mode {
				t.Fatalf("mode mismatch: got %v want %v", mode, tc.mode)
			}
			if tc.msg != "" && msg != tc.msg {
				t.Fatalf("msg mismatch: got %q want %q", msg, tc.msg)
			}
		})
	}
}

func TestResolveVersionInfo(t *testing.T) {
	v, c, d := resolveVersionInfo("dev", "none", "unknown", "v1.2.3", map[string]string{
		"vcs.revision": "0123456789abcdef",
		"vcs.time":     "2026-01-01T00:00:00Z",
	})
	if v != "v1.2.3" || c != "0123456789ab" || d != "2026-01-01T00:00:00Z" {
		t.Fatalf("unexpected version info: %s %s %s", v, c, d)
	}

	v, _, _ = resolveVersionInfo("v9", "abc", "today", "(devel)", nil)
	if v != "v9" {
		t.Fatalf("explicit version must win: %s", v)
	}
}

func TestPickTimeline(t *testing.T) {
	cfg := config.Config{Timeline: "local"}

	tl, err := pickTimeline("tag:go", config.UIState{Timeline: "home"}, cfg)
	if err != nil || tl.Key() != "tag:go" {
		t.Fatalf("argument must win: %v %v", tl, err)
	}
	tl, err = pickTimeline("", config.UIState{Timeline: "list:4"}, cfg)
	if err != nil || tl.Key() != "list:4" {
		t.Fatalf("saved state must win over config: %v %v", tl, err)
	}
	tl, err = pickTimeline("", config.UIState{}, cfg)
	if err != nil || tl.Key() != "local" {
		t.Fatalf("expected configured timeline: %v %v", tl, err)
	}
	if _, err := pickTimeline("nope", config.UIState{}, cfg); !errors.Is(err, domain.ErrInvalidTimeline) {
		t.Fatalf("expected invalid timeline, got %v", err)
	}
}

type pagesFetcher map[string]app.RawPage

func (f pagesFetcher) FetchPage(_ context.Context, _ domain.Timeline, cursor string, _ int) (app.RawPage, error) {
	return f[cursor], nil
}

type failingFetcher struct{}

func (failingFetcher) FetchPage(context.Context, domain.Timeline, string, int) (app.RawPage, error) {
	return app.RawPage{}, domain.NetworkError("fetch home", errors.New("dial tcp: refused"))
}

func TestPrintPages(t *testing.T) {
	author := domain.Account{ID: "a", Acct: "alice", DisplayName: "Alice"}
	fetcher := pagesFetcher{
		"": {Statuses: []domain.Status{
			{ID: "1", Account: author, Content: "hello\nworld", Favourited: true},
			{ID: "2", Account: domain.Account{Acct: "bob"}, Reblog: &domain.Status{ID: "20", Account: author, Content: "boosted"}},
			{ID: "3", Account: author, Content: "spoilers ahead"},
		}, NextKey: "max_id=3"},
		"max_id=3": {Statuses: []domain.Status{
			{ID: "4", Account: author, SpoilerText: "cw", Content: "hidden"},
		}},
	}
	filters := filter.New([]domain.FilterRule{{
		Title:    "spoilers",
		Contexts: []domain.FilterContext{domain.FilterContextHome},
		Action:   domain.FilterWarn,
		Keywords: []domain.FilterKeyword{{Keyword: "spoilers"}},
	}})
	cache := timeline.New(domain.Home(), fetcher, filters)

	var out bytes.Buffer
	if err := printPages(context.Background(), &out, cache, 5); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"── page 1 ──",
		"[1] Alice (@alice) [fav]",
		"  hello\n  world\n",
		"[20] Alice (@alice) boosted by @bob",
		"filtered: spoilers",
		"── page 2 ──",
		"CW: cw",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "spoilers ahead") || strings.Contains(got, "hidden") {
		t.Fatalf("warned and collapsed content must not be printed:\n%s", got)
	}
	if strings.Contains(got, "page 3") {
		t.Fatalf("expected to stop at the end of the timeline:\n%s", got)
	}
}

func TestPrintPages_StopsAtLimitAndReportsErrors(t *testing.T) {
	fetcher := pagesFetcher{
		"":  {Statuses: []domain.Status{{ID: "1"}}, NextKey: "a"},
		"a": {Statuses: []domain.Status{{ID: "2"}}, NextKey: "b"},
	}
	var out bytes.Buffer
	if err := printPages(context.Background(), &out, timeline.New(domain.Home(), fetcher, nil), 1); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if strings.Contains(out.String(), "page 2") {
		t.Fatalf("expected a single page:\n%s", out.String())
	}

	err := printPages(context.Background(), &out, timeline.New(domain.Home(), failingFetcher{}, nil), 1)
	if !domain.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestPrintTrending(t *testing.T) {
	var out bytes.Buffer
	printTrending(&out, trending.Snapshot{State: trending.StateLoaded, Tags: []domain.Tag{
		{Name: "go", History: []domain.TagHistory{{Uses: 7}}},
		{Name: "rust", History: []domain.TagHistory{{Uses: 3}}},
	}}, 1)
	if !strings.Contains(out.String(), "#go  7 uses") || strings.Contains(out.String(), "rust") {
		t.Fatalf("unexpected trending output:\n%s", out.String())
	}

	out.Reset()
	printTrending(&out, trending.Snapshot{State: trending.StateErrorNetwork, Err: domain.NetworkError("x", errors.New("down"))}, 5)
	if !strings.Contains(out.String(), "network error") {
		t.Fatalf("expected network message:\n%s", out.String())
	}
}
