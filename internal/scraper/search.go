package scraper

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/extract"
	"github.com/yhdm-go/yhdm/internal/models"
)

// SearchAnime runs a keyword search, optionally narrowed by tag and actor.
// Pages are 1-based. Items missing an anchor, id or title are skipped.
func (c *Client) SearchAnime(keyword, tag, actor string, page int) ([]models.AnimeShell, error) {
	params := url.Values{}
	params.Set("wd", keyword)
	params.Set("class", tag)
	params.Set("actor", actor)
	params.Set("page", strconv.Itoa(page))

	searchPath := c.baseURL + "/index.php/vod/search/"
	doc, err := c.getDocument(searchPath+"?"+params.Encode(), searchPath)
	if err != nil {
		return nil, errors.Wrap(err, "search failed")
	}
	return ParseSearchResults(doc, c.logger), nil
}

// ParseSearchResults extracts AnimeShell records from a search results
// page. A broken item never aborts the listing.
func ParseSearchResults(doc *goquery.Document, logger *log.Logger) []models.AnimeShell {
	var results []models.AnimeShell

	doc.Find("li.searchlist_item").Each(func(i int, item *goquery.Selection) {
		link := item.Find(".searchlist_img > a").First()
		if link.Length() == 0 {
			logger.Warn("search item has no image anchor, skipping", "index", i)
			return
		}

		href := link.AttrOr("href", "")
		id, ok := extract.IDFromURL(href)
		if !ok {
			logger.Warn("search item has no recoverable id, skipping", "href", href)
			return
		}

		name := extract.First(link, extract.Attr("title"), extract.Text())
		if name == "" {
			logger.Warn("search item has no title, skipping", "id", id)
			return
		}

		results = append(results, models.AnimeShell{
			ID:       id,
			Name:     name,
			ImageURL: extract.NormalizeImageURL(link.AttrOr("data-original", "")),
			Status:   extract.First(item, extract.TextOf("span.pic_text")),
		})
	})

	return results
}

// DetailURL returns the canonical detail-page URL for an anime id.
func (c *Client) DetailURL(animeID int) string {
	return fmt.Sprintf("%s/index.php/vod/detail/id/%d/", c.baseURL, animeID)
}
