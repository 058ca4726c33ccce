package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePageHTML = `
<html><body>
<div class="pannel">
  <h2 class="title">最近更新的日本动漫</h2>
  <a class="text_muted pull_left" href="/index.php/vod/type/id/1/">更多</a>
  <ul class="vodlist vodlist_wi">
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/detail/id/31/" title="夏日重现" data-original="//img/31.jpg">
        <span class="pic_text">全25集</span>
        <span class="vodlist_top"><em class="voddate_year">2022</em><em class="voddate_type">日漫</em></span>
      </a>
      <div class="vodlist_titbox"><p class="vodlist_sub">一段  简介</p></div>
    </li>
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/detail/id/32/" title="莉可丽丝" src="//img/32.jpg"></a>
    </li>
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/search/" title="坏条目"></a>
    </li>
  </ul>
</div>
<div class="pannel">
  <h2 class="title">友情链接</h2>
  <ul class="vodlist">
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/detail/id/33/" title="不该出现"></a>
    </li>
  </ul>
</div>
<div class="pannel">
  <h2 class="title">新番剧表</h2>
  <ul class="vodlist">
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/detail/id/41/" title="周一番"></a>
      <span class="pic_text text_right">更新至3集</span>
    </li>
  </ul>
  <ul class="vodlist">
    <li class="vodlist_item">
      <a class="vodlist_thumb" href="/index.php/vod/detail/id/42/" title="周二番"></a>
    </li>
  </ul>
  <ul class="vodlist"></ul>
</div>
<div class="list_info">
  <h3 class="title">周排行</h3>
  <ul>
    <li class="ranklist_item">
      <a href="/index.php/vod/detail/id/11/">
        <div class="ranklist_thumb lazyload" data-original="//img/11.jpg"></div>
      </a>
      <h4 class="title">进击的巨人</h4>
      <p class="vodlist_sub">最终季  完结篇</p>
      <span class="text_muted pull_right">9876</span>
    </li>
    <li>
      <a href="/index.php/vod/detail/id/22/">2 咒术回战 12345</a>
      <span class="text_muted pull_right renqi">4321</span>
    </li>
    <li>
      <a href="/nowhere/">3 无编号条目</a>
    </li>
  </ul>
</div>
</body></html>`

func TestParseCategories(t *testing.T) {
	t.Parallel()

	categories := ParseCategories(docFrom(t, homePageHTML), discardLogger())
	require.Len(t, categories, 1)

	cat := categories[0]
	assert.Equal(t, "最近更新的日本动漫", cat.Name)
	assert.Equal(t, 1, cat.CategoryID)

	// The broken tile is dropped; the 友情链接 pannel and the schedule
	// pannel are not categories.
	require.Len(t, cat.AnimeList, 2)

	first := cat.AnimeList[0]
	assert.Equal(t, 31, first.ID)
	assert.Equal(t, "夏日重现", first.Title)
	assert.Equal(t, "https://img/31.jpg", first.Thumbnail)
	assert.Equal(t, "2022", first.Year)
	assert.Equal(t, "日漫", first.Type)
	assert.Equal(t, "全25集", first.Status)
	assert.Equal(t, "一段 简介", first.Info)

	// src fallback when data-original is missing.
	assert.Equal(t, "https://img/32.jpg", cat.AnimeList[1].Thumbnail)
}

func TestParseWeeklySchedule(t *testing.T) {
	t.Parallel()

	schedule := ParseWeeklySchedule(docFrom(t, homePageHTML))

	// The empty third list yields no day.
	require.Len(t, schedule, 2)

	require.Len(t, schedule[0].AnimeList, 1)
	assert.Equal(t, 41, schedule[0].AnimeList[0].ID)
	assert.Equal(t, "更新至3集", schedule[0].AnimeList[0].UpdateInfo)

	assert.Equal(t, 42, schedule[1].AnimeList[0].ID)
	assert.Empty(t, schedule[1].AnimeList[0].UpdateInfo)
}

func TestParseRankings(t *testing.T) {
	t.Parallel()

	rankings := ParseRankings(docFrom(t, homePageHTML), discardLogger())
	require.Len(t, rankings, 1)

	list := rankings[0]
	assert.Equal(t, "周排行", list.Name)

	// The id-less third row is dropped.
	require.Len(t, list.Items, 2)

	illustrated := list.Items[0]
	assert.Equal(t, 1, illustrated.Rank)
	assert.Equal(t, 11, illustrated.ID)
	assert.Equal(t, "进击的巨人", illustrated.Title)
	assert.Equal(t, "最终季 完结篇", illustrated.Info)
	assert.Equal(t, 9876, illustrated.Heat)
	assert.Equal(t, "https://img/11.jpg", illustrated.Thumbnail)

	plain := list.Items[1]
	assert.Equal(t, 2, plain.Rank)
	assert.Equal(t, 22, plain.ID)
	assert.Equal(t, "咒术回战", plain.Title)
	assert.Equal(t, 4321, plain.Heat)
	assert.Empty(t, plain.Thumbnail)
}

func TestParseRecentUpdates(t *testing.T) {
	t.Parallel()

	items := ParseRecentUpdates(docFrom(t, homePageHTML))

	// Every parseable vodlist_item on the page, in document order,
	// capped at twelve.
	require.NotEmpty(t, items)
	assert.Equal(t, 31, items[0].ID)
	assert.LessOrEqual(t, len(items), 12)
}
