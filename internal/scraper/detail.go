package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/extract"
	"github.com/yhdm-go/yhdm/internal/models"
)

const (
	// movieType marks detail pages whose playlist is a single feature,
	// not a numbered episode run.
	movieType = "动漫电影"

	// regularEpisodeMarker is the leading glyph of numbered episode
	// titles (第1集, 第02话...); specials and extras lack it and are
	// excluded from the latest-episode count.
	regularEpisodeMarker = "第"

	unknownLabel = "未知"
)

// GetAnimeDetail fetches and parses the full detail record for an anime.
func (c *Client) GetAnimeDetail(animeID int) (*models.Anime, error) {
	doc, err := c.getDocument(c.DetailURL(animeID), c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch detail page")
	}

	anime := ParseAnimeDetail(doc, animeID, c.logger)
	if anime == nil {
		return nil, errors.Errorf("detail page for anime %d is missing required elements", animeID)
	}
	return anime, nil
}

// ParseAnimeDetail builds an Anime from a detail page document. It
// returns nil when the thumbnail anchor or the title heading is missing;
// every other field degrades to its absent value instead.
func ParseAnimeDetail(doc *goquery.Document, animeID int, logger *log.Logger) *models.Anime {
	thumb := doc.Find(".content_thumb > a").First()
	heading := doc.Find(".content_detail h2").First()
	if thumb.Length() == 0 || heading.Length() == 0 {
		logger.Error("detail page missing thumbnail or title heading", "anime", animeID)
		return nil
	}

	imageURL := extract.NormalizeImageURL(thumb.AttrOr("data-original", ""))
	name := strings.TrimSpace(heading.Text())

	// First data block carries year and tags, the second carries status.
	// The relation is positional; the markup declares nothing.
	dataBlocks := doc.Find(".content_detail li.data")

	year := ""
	var tags []string
	if first := dataBlocks.Eq(0); first.Length() > 0 {
		year = extract.YearFrom(first.Text())
		first.Find("a").Each(func(_ int, a *goquery.Selection) {
			if strings.Contains(a.AttrOr("href", ""), "/index.php/vod/search/class") {
				if tag := strings.TrimSpace(a.Text()); tag != "" {
					tags = append(tags, tag)
				}
			}
		})
	} else {
		logger.Warn("detail page has no data block for year/tags", "anime", animeID)
	}
	if year == "" {
		year = unknownLabel
	}

	status := ""
	if second := dataBlocks.Eq(1); second.Length() > 0 {
		status = extract.StatusFrom(second)
	} else {
		logger.Warn("detail page has no second data block for status", "anime", animeID)
	}

	description := strings.TrimSpace(doc.Find(".content .full_text > span").First().Text())

	animeType := strings.TrimSpace(doc.Find("ul.top_nav > li.active").First().Text())
	if animeType == "" {
		animeType = unknownLabel
	}

	streamLines, latestEpisode := parsePlaylists(doc, animeType, logger)

	if animeType == movieType {
		latestEpisode = 0
		for _, line := range streamLines {
			if len(line.Episodes) > 0 {
				latestEpisode = 1
				break
			}
		}
	}

	return &models.Anime{
		ID:            animeID,
		Name:          name,
		ImageURL:      imageURL,
		Status:        status,
		LatestEpisode: latestEpisode,
		Tags:          tags,
		Type:          animeType,
		Year:          year,
		Description:   description,
		StreamLines:   streamLines,
		LastUpdate:    time.Now(),
	}
}

// parsePlaylists walks the playlist blocks, deduplicating lines by sid
// (first occurrence wins) and assigning dense 1-based episode ids over
// the links with non-empty text.
func parsePlaylists(doc *goquery.Document, animeType string, logger *log.Logger) ([]models.StreamLine, int) {
	var streamLines []models.StreamLine
	latestEpisode := 0
	seen := make(map[int]struct{})

	doc.Find("ul.content_playlist").Each(func(i int, playlist *goquery.Selection) {
		links := playlist.Find("a")
		if links.Length() == 0 {
			return
		}

		streamID, ok := extract.StreamIDFromURL(links.First().AttrOr("href", ""))
		if !ok {
			logger.Warn("playlist block has no recoverable line id, skipping", "index", i)
			return
		}
		if _, dup := seen[streamID]; dup {
			logger.Warn("duplicate stream line, keeping first", "sid", streamID)
			return
		}
		seen[streamID] = struct{}{}

		var episodes []models.Episode
		regularCount := 0
		links.Each(func(_ int, link *goquery.Selection) {
			title := strings.TrimSpace(link.Text())
			if title == "" {
				return
			}
			episodes = append(episodes, models.Episode{
				ID:    len(episodes) + 1,
				Title: title,
			})
			if strings.HasPrefix(title, regularEpisodeMarker) {
				regularCount++
			}
		})

		if len(episodes) == 0 {
			return
		}

		streamLines = append(streamLines, models.StreamLine{
			ID:       streamID,
			Episodes: episodes,
		})
		if animeType != movieType && regularCount > latestEpisode {
			latestEpisode = regularCount
		}
	})

	return streamLines, latestEpisode
}
