package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionFrom(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find(selector)
	require.NotZero(t, sel.Length(), "selector %q matched nothing", selector)
	return sel
}

func TestIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		wantID int
		wantOK bool
	}{
		{"detail path segment", "/index.php/vod/detail/id/123/", 123, true},
		{"html suffix", "/vod/play/456.html", 456, true},
		{"trailing segment", "/vod/play/789", 789, true},
		{"trailing segment with slash", "/vod/play/789/", 789, true},
		{"absolute url", "https://www.example.com/index.php/vod/detail/id/321/", 321, true},
		{"id pattern wins over html", "/index.php/vod/detail/id/123/456.html", 123, true},
		{"no digit segment", "/index.php/vod/search/", 0, false},
		{"word segment", "/about/", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := IDFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestStreamIDFromURL(t *testing.T) {
	t.Parallel()

	id, ok := StreamIDFromURL("/index.php/vod/play/id/24103/sid/3/nid/1/")
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = StreamIDFromURL("/index.php/vod/detail/id/24103/")
	assert.False(t, ok)
}

func TestFirstNumber(t *testing.T) {
	t.Parallel()

	n, ok := FirstNumber("热度 9876 次")
	assert.True(t, ok)
	assert.Equal(t, 9876, n)

	_, ok = FirstNumber("没有数字")
	assert.False(t, ok)

	_, ok = FirstNumber("")
	assert.False(t, ok)
}

func TestYearFrom(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2023", YearFrom("年份：2023 地区：日本"))
	assert.Equal(t, "1998", YearFrom("年份: 1998"))
	assert.Equal(t, "2020", YearFrom("年份2020"))
	assert.Equal(t, "", YearFrom("地区：日本"))
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/vod/detail/id/1/",
		ResolveURL("https://example.com", "/vod/detail/id/1/"))
	assert.Equal(t, "https://other.com/x",
		ResolveURL("https://example.com", "https://other.com/x"))
}

func TestNormalizeImageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://img.example.com/a.jpg", NormalizeImageURL("//img.example.com/a.jpg"))
	assert.Equal(t, "https://img.example.com/a.jpg", NormalizeImageURL("https://img.example.com/a.jpg"))
	assert.Equal(t, "", NormalizeImageURL(""))
}

func TestFirstStrategyOrder(t *testing.T) {
	t.Parallel()

	sel := selectionFrom(t,
		`<a data-original="//img/a.jpg" src="//img/b.jpg" title="  名字  ">文本</a>`, "a")

	assert.Equal(t, "//img/a.jpg", First(sel, Attr("data-original"), Attr("src")))
	assert.Equal(t, "//img/b.jpg", First(sel, Attr("missing"), Attr("src")))
	assert.Equal(t, "名字", First(sel, Attr("title"), Text()))
	assert.Equal(t, "", First(sel, Attr("missing"), AttrOf("span", "alt")))
}

func TestStatusFrom_PreferredNode(t *testing.T) {
	t.Parallel()

	sel := selectionFrom(t,
		`<li class="data">状态：<span class="data_style">更新至第5集</span> 地区：日本</li>`, "li.data")
	assert.Equal(t, "更新至第5集", StatusFrom(sel))
}

func TestStatusFrom_TextScanFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"cuts at next label",
			`<li class="data">状态：更新至第10集 地区：日本</li>`,
			"更新至第10集",
		},
		{
			"no trailing label",
			`<li class="data"><span>状态：已完结</span></li>`,
			"已完结",
		},
		{
			"label missing",
			`<li class="data">地区：日本</li>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := selectionFrom(t, tt.html, "li.data")
			assert.Equal(t, tt.want, StatusFrom(sel))
		})
	}
}

func TestHeatFrom(t *testing.T) {
	t.Parallel()

	sel := selectionFrom(t,
		`<li><a href="/1/">x</a><span class="text_muted pull_right">9876</span></li>`, "li")
	assert.Equal(t, 9876, HeatFrom(sel))

	sel = selectionFrom(t,
		`<li><a href="/1/">x</a><span class="text_muted pull_right renqi">4321</span></li>`, "li")
	assert.Equal(t, 4321, HeatFrom(sel))

	sel = selectionFrom(t, `<li><a href="/1/">x</a></li>`, "li")
	assert.Equal(t, 0, HeatFrom(sel))
}

func TestCleanRankTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"rank prefix and heat suffix", "2 咒术回战 12345", "咒术回战"},
		{"rank prefix only", "10 进击的巨人", "进击的巨人"},
		{"punctuation stripped", "1 葬送的芙莉莲!", "葬送的芙莉莲"},
		{"latin kept", "3 ReZERO 999", "ReZERO"},
		{"plain title untouched", "海贼王", "海贼王"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRankTitle(tt.input))
		})
	}
}

func TestBackgroundImageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://img/a.jpg", BackgroundImageURL(`background-image: url('https://img/a.jpg');`))
	assert.Equal(t, "https://img/a.jpg", BackgroundImageURL(`background-image:url(https://img/a.jpg)`))
	assert.Equal(t, "", BackgroundImageURL("color: red"))
}
