package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/extract"
	"github.com/yhdm-go/yhdm/internal/models"
)

const (
	scheduleSectionTitle = "番剧表"
	recentUpdatesLimit   = 12
)

// categoryKeywords selects which homepage pannels count as catalog
// categories; everything else (友情链接, footer pannels...) is noise.
var categoryKeywords = []string{"动漫", "番剧", "排行榜"}

// GetHomePage fetches the site root and parses every homepage section.
func (c *Client) GetHomePage() (*models.HomePage, error) {
	doc, err := c.getDocument(c.baseURL+"/", c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch homepage")
	}
	return &models.HomePage{
		RecentUpdates:  ParseRecentUpdates(doc),
		Categories:     ParseCategories(doc, c.logger),
		WeeklySchedule: ParseWeeklySchedule(doc),
		Rankings:       ParseRankings(doc, c.logger),
	}, nil
}

// ParseRecentUpdates returns the first 12 homepage tiles.
func ParseRecentUpdates(doc *goquery.Document) []models.HomeAnimeItem {
	var items []models.HomeAnimeItem
	doc.Find(".vodlist_item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if item, ok := parseHomeAnimeItem(sel); ok {
			items = append(items, item)
		}
		return len(items) < recentUpdatesLimit
	})
	return items
}

// ParseCategories returns the titled catalog sections of the homepage.
func ParseCategories(doc *goquery.Document, logger *log.Logger) []models.Category {
	var categories []models.Category

	doc.Find("div.pannel").Each(func(_ int, section *goquery.Selection) {
		name := strings.TrimSpace(section.Find("h2.title").First().Text())
		if name == "" {
			return
		}
		// The schedule pannel is parsed separately.
		if strings.Contains(name, scheduleSectionTitle) {
			return
		}
		if !containsAny(name, categoryKeywords) {
			return
		}

		categoryID := 0
		if more := section.Find("a.text_muted.pull_left").First(); more.Length() > 0 {
			if id, ok := extract.IDFromURL(more.AttrOr("href", "")); ok {
				categoryID = id
			}
		}

		var animeList []models.HomeAnimeItem
		section.Find("ul.vodlist li.vodlist_item").Each(func(_ int, sel *goquery.Selection) {
			if item, ok := parseHomeAnimeItem(sel); ok {
				animeList = append(animeList, item)
			}
		})
		if len(animeList) == 0 {
			logger.Warn("homepage category has no parseable items", "category", name)
			return
		}

		categories = append(categories, models.Category{
			Name:       name,
			CategoryID: categoryID,
			AnimeList:  animeList,
		})
	})

	return categories
}

// ParseWeeklySchedule returns the broadcast schedule, one ScheduleDay per
// list in the 番剧表 pannel.
func ParseWeeklySchedule(doc *goquery.Document) []models.ScheduleDay {
	var schedule []models.ScheduleDay

	doc.Find("div.pannel").Each(func(_ int, section *goquery.Selection) {
		title := strings.TrimSpace(section.Find("h2.title").First().Text())
		if !strings.Contains(title, scheduleSectionTitle) {
			return
		}

		section.Find("ul.vodlist").Each(func(_ int, day *goquery.Selection) {
			var animeList []models.HomeAnimeItem
			day.Find("li.vodlist_item").Each(func(_ int, sel *goquery.Selection) {
				item, ok := parseHomeAnimeItem(sel)
				if !ok {
					return
				}
				item.UpdateInfo = strings.TrimSpace(sel.Find("span.pic_text.text_right").First().Text())
				animeList = append(animeList, item)
			})
			if len(animeList) > 0 {
				schedule = append(schedule, models.ScheduleDay{AnimeList: animeList})
			}
		})
	})

	return schedule
}

// ParseRankings returns the popularity ranking blocks. Illustrated rows
// (marked by the ranklist_item class) carry a synopsis and thumbnail;
// plain rows get the rank-digit cleanup pass on their title.
func ParseRankings(doc *goquery.Document, logger *log.Logger) []models.RankingList {
	var rankings []models.RankingList

	doc.Find("div.list_info").Each(func(_ int, section *goquery.Selection) {
		name := strings.TrimSpace(section.Find("h3.title").First().Text())
		if name == "" {
			return
		}

		var items []models.RankingItem
		section.Find("li").Each(func(i int, sel *goquery.Selection) {
			var item models.RankingItem
			var ok bool
			if sel.HasClass("ranklist_item") || sel.Find(".ranklist_item").Length() > 0 {
				item, ok = parseIllustratedRankItem(sel)
			} else {
				item, ok = parsePlainRankItem(sel)
			}
			if !ok {
				logger.Warn("ranking row has no recoverable id, skipping", "list", name, "index", i)
				return
			}
			item.Rank = i + 1
			item.Heat = extract.HeatFrom(sel)
			items = append(items, item)
		})
		if len(items) == 0 {
			return
		}

		rankings = append(rankings, models.RankingList{
			Name:  name,
			Items: items,
		})
	})

	return rankings
}

func parseIllustratedRankItem(sel *goquery.Selection) (models.RankingItem, bool) {
	title := strings.TrimSpace(sel.Find("h4.title").First().Text())
	if title == "" {
		return models.RankingItem{}, false
	}

	id, ok := extract.IDFromURL(sel.Find("a").First().AttrOr("href", ""))
	if !ok {
		return models.RankingItem{}, false
	}

	info := strings.Join(strings.Fields(sel.Find("p.vodlist_sub").First().Text()), " ")

	thumb := sel.Find("div.ranklist_thumb.lazyload").First()
	thumbnail := extract.First(thumb,
		extract.Attr("data-original"),
		func(s *goquery.Selection) string {
			return extract.BackgroundImageURL(s.AttrOr("style", ""))
		},
	)

	return models.RankingItem{
		ID:        id,
		Title:     title,
		Info:      info,
		Thumbnail: extract.NormalizeImageURL(thumbnail),
	}, true
}

func parsePlainRankItem(sel *goquery.Selection) (models.RankingItem, bool) {
	link := sel.Find("a").First()
	if link.Length() == 0 {
		return models.RankingItem{}, false
	}

	id, ok := extract.IDFromURL(link.AttrOr("href", ""))
	if !ok {
		return models.RankingItem{}, false
	}

	return models.RankingItem{
		ID:    id,
		Title: extract.CleanRankTitle(strings.TrimSpace(link.Text())),
	}, true
}

// parseHomeAnimeItem parses one homepage tile. Tiles without a thumbnail
// anchor or a recoverable id are dropped.
func parseHomeAnimeItem(sel *goquery.Selection) (models.HomeAnimeItem, bool) {
	link := sel.Find("a.vodlist_thumb").First()
	if link.Length() == 0 {
		return models.HomeAnimeItem{}, false
	}

	id, ok := extract.IDFromURL(link.AttrOr("href", ""))
	if !ok {
		return models.HomeAnimeItem{}, false
	}

	thumb := extract.First(link,
		extract.Attr("data-original"),
		extract.Attr("src"),
	)

	top := sel.Find("span.vodlist_top").First()

	return models.HomeAnimeItem{
		ID:        id,
		Title:     strings.TrimSpace(link.AttrOr("title", "")),
		Thumbnail: extract.NormalizeImageURL(thumb),
		Year:      strings.TrimSpace(top.Find("em.voddate_year").First().Text()),
		Type:      strings.TrimSpace(top.Find("em.voddate_type").First().Text()),
		Status:    strings.TrimSpace(sel.Find("span.pic_text").First().Text()),
		Info:      strings.Join(strings.Fields(sel.Find("p.vodlist_sub").First().Text()), " "),
	}, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
