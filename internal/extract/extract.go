// Package extract implements the field extraction helpers shared by every
// catalog parser: identifier recovery from heterogeneous URL shapes,
// ordered selector fallback chains, and the text-based status/heat/year
// heuristics. Everything here is pure with respect to its HTML input.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ID recovery patterns, tried in order. Different page kinds encode
	// the same id in different URL shapes.
	idPathRe     = regexp.MustCompile(`/id/(\d+)/?`)
	idHTMLRe     = regexp.MustCompile(`/(\d+)\.html`)
	idTrailingRe = regexp.MustCompile(`/(\d+)/?$`)

	numberRe = regexp.MustCompile(`(\d+)`)
	yearRe   = regexp.MustCompile(`年份[:：]?\s*(\d{4})`)

	// Status fallback: cut the scanned text at the next CJK label token.
	cjkLabelRe = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]+[:：]`)

	leadingRankRe = regexp.MustCompile(`^\d+\s+`)
	digitRunRe    = regexp.MustCompile(`\d+\s*`)
	spaceRe       = regexp.MustCompile(`\s`)
	nonWordCJKRe  = regexp.MustCompile(`[^\w\x{4e00}-\x{9fff}]`)

	bgImageRe = regexp.MustCompile(`url\(['"]?(.*?)['"]?\)`)
)

// ResolveURL resolves a possibly relative ref against base. Returns ""
// when either side does not parse.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}

// NormalizeImageURL upgrades protocol-relative image URLs to https.
func NormalizeImageURL(raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// IDFromURL recovers the numeric catalog id from a URL path. It tries, in
// order: /id/<digits>/, /<digits>.html, then a trailing /<digits> segment.
// The second return is false when no pattern matches.
func IDFromURL(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	for _, re := range []*regexp.Regexp{idPathRe, idHTMLRe, idTrailingRe} {
		if m := re.FindStringSubmatch(path); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil || id <= 0 {
				continue
			}
			return id, true
		}
	}
	return 0, false
}

// StreamIDFromURL recovers the playback line id from a /sid/<digits>/
// play-page path segment.
func StreamIDFromURL(raw string) (int, bool) {
	m := streamIDRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var streamIDRe = regexp.MustCompile(`/sid/(\d+)/`)

// Strategy resolves one candidate value from a selection. Chains of
// strategies replace nested conditionals: reordering a fallback is a data
// change, not a control-flow change.
type Strategy func(*goquery.Selection) string

// Attr reads an attribute of the selection's first node.
func Attr(name string) Strategy {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.AttrOr(name, ""))
	}
}

// AttrOf reads an attribute of the first element matching selector.
func AttrOf(selector, name string) Strategy {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().AttrOr(name, ""))
	}
}

// Text reads the selection's own trimmed text.
func Text() Strategy {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	}
}

// TextOf reads the trimmed text of the first element matching selector.
func TextOf(selector string) Strategy {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().Text())
	}
}

// First evaluates strategies in order and returns the first non-empty
// value, or "" when every strategy comes up empty.
func First(s *goquery.Selection, strategies ...Strategy) string {
	for _, strategy := range strategies {
		if v := strategy(s); v != "" {
			return v
		}
	}
	return ""
}

// FirstNumber extracts the first run of digits from text.
func FirstNumber(text string) (int, bool) {
	m := numberRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// YearFrom extracts a labeled 4-digit year (年份: 2023) from text.
func YearFrom(text string) string {
	m := yearRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

const statusLabel = "状态："

// StatusFrom resolves the airing-status field from a metadata block. The
// dedicated span.data_style node is preferred; when missing, the literal
// 状态： label is located in the block text, everything after the next
// CJK label token is trimmed off, and placeholder sequences stripped.
func StatusFrom(block *goquery.Selection) string {
	if v := strings.TrimSpace(block.Find("span.data_style").First().Text()); v != "" {
		return v
	}

	text := strings.TrimSpace(block.Text())
	idx := strings.Index(text, statusLabel)
	if idx < 0 {
		return ""
	}
	status := strings.TrimSpace(text[idx+len(statusLabel):])
	if loc := cjkLabelRe.FindStringIndex(status); loc != nil && loc[0] > 0 {
		status = strings.TrimSpace(status[:loc[0]])
	}
	status = strings.ReplaceAll(status, "&nbsp;", " ")
	status = strings.ReplaceAll(status, "\u00a0", " ")
	return strings.TrimSpace(status)
}

// HeatFrom extracts the popularity counter from a ranking fragment,
// trying the plain and the renqi-tagged counter spans in turn.
func HeatFrom(item *goquery.Selection) int {
	text := First(item,
		TextOf("span.text_muted.pull_right"),
		TextOf(".renqi"),
	)
	if text == "" {
		return 0
	}
	n, ok := FirstNumber(text)
	if !ok {
		return 0
	}
	return n
}

// CleanRankTitle strips the leading rank number, the first remaining
// digit run, all whitespace, and any non-word, non-CJK characters from a
// plain ranking row title.
func CleanRankTitle(title string) string {
	title = leadingRankRe.ReplaceAllString(title, "")
	if loc := digitRunRe.FindStringIndex(title); loc != nil {
		title = title[:loc[0]] + title[loc[1]:]
	}
	title = spaceRe.ReplaceAllString(title, "")
	title = nonWordCJKRe.ReplaceAllString(title, "")
	return title
}

// BackgroundImageURL pulls the url(...) value out of an inline style.
func BackgroundImageURL(style string) string {
	m := bgImageRe.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return m[1]
}
