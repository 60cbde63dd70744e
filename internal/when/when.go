// Package when turns the time expressions accepted on the command line into
// instants.
package when

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	nlp "github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnknownTime is returned for expressions no format recognizes.
var ErrUnknownTime = errors.New("unrecognized time")

// Clock-only layouts, read as a time on the reference day.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05PM",
	"3:04PM",
	"3PM",
}

var phrases = newPhraseParser()

func newPhraseParser() *nlp.Parser {
	p := nlp.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}

// Parse resolves expr relative to now.
//
// Accepted forms:
//   - "now", "today" (midnight), "yesterday" (midnight)
//   - Go durations with a sign: "-90m", "+1h", or followed by "ago": "2h ago"
//   - "15:04", "15:04:05", "3:04PM": that time on now's day
//   - RFC 3339 timestamps
//   - English phrases that cover the whole expression: "3 days ago"
//   - other absolute dates in any layout dateparse knows, e.g.
//     "2006-01-02 15:04"; dates without a zone are read in now's location
func Parse(expr string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(expr)
	lower := strings.ToLower(s)
	loc := now.Location()

	switch lower {
	case "":
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrUnknownTime)
	case "now":
		return now, nil
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(lower, "-") || strings.HasPrefix(lower, "+") {
		if d, err := time.ParseDuration(lower); err == nil {
			return now.Add(d), nil
		}
	}
	if rest, ok := strings.CutSuffix(lower, " ago"); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(rest)); err == nil {
			return now.Add(-d), nil
		}
	}

	upper := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			y, m, d := now.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	// Stamps printed by the CLI read back exactly.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	if t, ok := phrase(lower, now); ok {
		return t, nil
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTime, expr)
	}
	return t, nil
}

// phrase matches English relative expressions. A match that leaves part of
// the expression unread does not count.
func phrase(s string, now time.Time) (time.Time, bool) {
	r, err := phrases.Parse(s, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if strings.TrimSpace(r.Text) != s {
		return time.Time{}, false
	}
	return r.Time, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Format renders t the way the CLI announces a destination.
func Format(t time.Time) string {
	return t.Format("03:04:05 PM on Monday, January 02, 2006")
}
