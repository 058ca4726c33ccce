package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/models"
)

const suggestSuccessCode = 1

// GetSearchSuggestions queries the ajax suggest endpoint. A response code
// other than 1 yields an empty list, not an error; only transport and
// decode failures are returned.
func (c *Client) GetSearchSuggestions(keyword string) ([]models.Suggest, error) {
	params := url.Values{}
	params.Set("mid", "1")
	params.Set("wd", keyword)
	params.Set("limit", "10")
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	suggestURL := fmt.Sprintf("%s/index.php/ajax/suggest?%s", c.baseURL, params.Encode())

	req, err := http.NewRequest(http.MethodGet, suggestURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create suggest request")
	}
	c.decorateRequest(req, c.baseURL)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "suggest request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("suggest endpoint returned: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read suggest response")
	}

	var envelope models.SuggestsResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode suggest response")
	}

	if envelope.Code != suggestSuccessCode {
		c.logger.Warn("suggest endpoint returned non-success code",
			"code", envelope.Code, "msg", envelope.Msg)
		return []models.Suggest{}, nil
	}
	return envelope.List, nil
}
