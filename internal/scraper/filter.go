package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/extract"
	"github.com/yhdm-go/yhdm/internal/models"
)

// FilterOptions narrows a category listing. Zero values are omitted from
// the path; the site encodes every filter as a path segment, not a query
// parameter.
type FilterOptions struct {
	Type    int    // category id (1 = 日本动漫, 2 = 国产动漫, ...)
	Genre   string // class segment (热血, 冒险, ...)
	Year    string
	Letter  string
	OrderBy string // time, score or hits
	Page    int
}

// FilterAnime fetches one page of a filtered category listing.
func (c *Client) FilterAnime(opts FilterOptions) ([]models.AnimeShell, error) {
	if opts.Type == 0 {
		opts.Type = 1
	}
	if opts.Page == 0 {
		opts.Page = 1
	}

	var path strings.Builder
	fmt.Fprintf(&path, "/index.php/vod/show/id/%d", opts.Type)
	if opts.Genre != "" {
		fmt.Fprintf(&path, "/class/%s", url.PathEscape(opts.Genre))
	}
	if opts.Year != "" {
		fmt.Fprintf(&path, "/year/%s", url.PathEscape(opts.Year))
	}
	if opts.Letter != "" {
		fmt.Fprintf(&path, "/letter/%s", url.PathEscape(opts.Letter))
	}
	if opts.OrderBy != "" {
		fmt.Fprintf(&path, "/order/%s", url.PathEscape(opts.OrderBy))
	}
	fmt.Fprintf(&path, "/page/%d.html", opts.Page)

	referer := fmt.Sprintf("%s/index.php/vod/show/id/%d/", c.baseURL, opts.Type)
	doc, err := c.getDocument(c.baseURL+path.String(), referer)
	if err != nil {
		return nil, errors.Wrap(err, "filter listing failed")
	}
	return ParseFilterResults(doc, c.logger), nil
}

// ParseFilterResults extracts AnimeShell records from a category listing.
func ParseFilterResults(doc *goquery.Document, logger *log.Logger) []models.AnimeShell {
	var results []models.AnimeShell

	doc.Find(".vodlist_wi > .vodlist_item").Each(func(i int, item *goquery.Selection) {
		link := item.Find("a.vodlist_thumb").First()
		if link.Length() == 0 {
			logger.Warn("filter item has no thumbnail anchor, skipping", "index", i)
			return
		}

		href := link.AttrOr("href", "")
		id, ok := extract.IDFromURL(href)
		if !ok {
			logger.Warn("filter item has no recoverable id, skipping", "href", href)
			return
		}

		name := strings.TrimSpace(link.AttrOr("title", ""))
		if name == "" {
			logger.Warn("filter item has no title, skipping", "id", id)
			return
		}

		image := extract.First(link,
			extract.Attr("data-original"),
			extract.Attr("src"),
		)

		results = append(results, models.AnimeShell{
			ID:       id,
			Name:     name,
			ImageURL: extract.NormalizeImageURL(image),
			Status:   extract.First(item, extract.TextOf("span.pic_text")),
		})
	})

	return results
}
