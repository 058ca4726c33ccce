// Package decrypt resolves the playable video URL hidden behind the
// site's two-hop, script-embedded, AES-encrypted exchange: the play page
// embeds an URL-encoded ciphertext pair, the player-config endpoint
// returns a session uid and a base64 ciphertext, and AES-CBC with a
// uid-derived key recovers the real stream endpoint.
package decrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/models"
	"github.com/yhdm-go/yhdm/internal/scraper"
	"github.com/yhdm-go/yhdm/internal/util"
)

// DefaultPlayerBaseURL is the root of the player-config host.
const DefaultPlayerBaseURL = "https://player.yhdmz.org"

const (
	// Key material: key = keyPrefix + uid + keySuffix, IV fixed across
	// all sessions. Lifted from the player script; do not derive.
	keyPrefix = "2890"
	keySuffix = "tB959C"
	aesIV     = "2F131BE91247866E"
)

var (
	// The url and url_next fields sit in the same script body with
	// arbitrary JSON between them.
	encryptedPairRe = regexp.MustCompile(`(?s)url"\s*:\s*"([^"]*)".*?"url_next"\s*:\s*"([^"]*)"`)

	// Quoted JSON string literals from the player-config document; the
	// literal is decoded with encoding/json to un-escape it.
	configURLRe = regexp.MustCompile(`"url"\s*:\s*("([^"]*)")`)
	configUIDRe = regexp.MustCompile(`"uid"\s*:\s*("([^"]*)")`)
)

// Resolver runs the video-URL decryption protocol.
type Resolver struct {
	httpClient    *http.Client
	baseURL       string
	playerBaseURL string
	userAgent     string
	logger        *log.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL overrides the catalog site root used for the play page.
func WithBaseURL(base string) ResolverOption {
	return func(r *Resolver) { r.baseURL = base }
}

// WithPlayerBaseURL overrides the player-config host.
func WithPlayerBaseURL(base string) ResolverOption {
	return func(r *Resolver) { r.playerBaseURL = base }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) ResolverOption {
	return func(r *Resolver) { r.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ResolverOption {
	return func(r *Resolver) { r.userAgent = ua }
}

// WithLogger injects the diagnostics logger.
func WithLogger(l *log.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver. The default transport is the fast
// pooled client; play pages and player configs are small documents.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		httpClient:    util.GetFastClient(),
		baseURL:       scraper.DefaultBaseURL,
		playerBaseURL: DefaultPlayerBaseURL,
		userAgent:     scraper.DefaultUserAgent,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetVideoURL resolves the playable URL for one episode of one stream
// line. The next-episode URL is resolved only after the main URL has
// been decrypted; a failed or invalid next URL leaves NextURL empty
// without failing the call. A failed main URL fails the whole call.
func (r *Resolver) GetVideoURL(animeID, episode, streamID int) (models.ResolvedStream, error) {
	playURL := fmt.Sprintf("%s/index.php/vod/play/id/%d/sid/%d/nid/%d/",
		r.baseURL, animeID, streamID, episode)

	doc, err := r.fetchDocument(playURL, playURL)
	if err != nil {
		return models.ResolvedStream{}, errors.Wrap(err, "failed to fetch play page")
	}

	encryptedURL, encryptedNextURL, err := ParseEncryptedVideoURL(doc)
	if err != nil {
		return models.ResolvedStream{}, errors.Wrap(err, "failed to extract encrypted url pair")
	}

	mainURL, err := r.decryptURL(encryptedURL)
	if err != nil {
		return models.ResolvedStream{}, errors.Wrap(err, "failed to decrypt main url")
	}

	nextURL := ""
	if encryptedNextURL != "" {
		nextURL, err = r.decryptURL(encryptedNextURL)
		if err != nil {
			r.logger.Warn("failed to decrypt next url", "err", err)
			nextURL = ""
		} else if !hasHTTPScheme(nextURL) {
			r.logger.Warn("decrypted next url has no http scheme, discarding", "url", nextURL)
			nextURL = ""
		}
	}

	return models.ResolvedStream{URL: mainURL, NextURL: nextURL}, nil
}

// ParseEncryptedVideoURL pulls the URL-decoded encrypted pair out of the
// play page's inline player script. The next URL may legitimately be
// empty; an empty primary URL is an error.
func ParseEncryptedVideoURL(doc *goquery.Document) (string, string, error) {
	script := doc.Find(".player_video script").First()
	if script.Length() == 0 {
		return "", "", errors.New("play page has no player script")
	}

	m := encryptedPairRe.FindStringSubmatch(script.Text())
	if m == nil {
		return "", "", errors.New("player script does not match the url pair pattern")
	}

	encryptedURL, err := url.PathUnescape(m[1])
	if err != nil {
		return "", "", errors.Wrap(err, "failed to url-decode primary url")
	}
	encryptedNextURL, err := url.PathUnescape(m[2])
	if err != nil {
		return "", "", errors.Wrap(err, "failed to url-decode next url")
	}

	if encryptedURL == "" {
		return "", "", errors.New("primary encrypted url is empty")
	}
	return encryptedURL, encryptedNextURL, nil
}

// decryptURL performs one resolution: fetch the player-config document
// keyed by the encrypted URL, extract uid and ciphertext, derive the key
// and decrypt.
func (r *Resolver) decryptURL(encryptedURL string) (string, error) {
	escaped := url.QueryEscape(encryptedURL)
	configURL := fmt.Sprintf("%s/player/ec.php?code=qw&if=1&url=%s", r.playerBaseURL, escaped)
	referer := fmt.Sprintf("%s/player/index.php?code=qw&if=1&url=%s", r.playerBaseURL, escaped)

	body, err := r.fetchBody(configURL, referer)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch player config")
	}

	ciphertextB64, uid, err := ParsePlayerConfig(body)
	if err != nil {
		return "", err
	}

	plaintext, err := DecryptStreamURL(ciphertextB64, uid)
	if err != nil {
		return "", err
	}
	r.logger.Debug("decrypted stream url", "uid", uid)
	return plaintext, nil
}

// ParsePlayerConfig extracts the base64 ciphertext and the session uid
// from a player-config document. Both values are JSON string literals
// and are unescaped by decoding them as JSON.
func ParsePlayerConfig(body string) (ciphertextB64, uid string, err error) {
	m := configURLRe.FindStringSubmatch(body)
	if m == nil {
		return "", "", errors.New("player config has no url field")
	}
	if err := json.Unmarshal([]byte(m[1]), &ciphertextB64); err != nil {
		return "", "", errors.Wrap(err, "failed to decode url literal")
	}

	m = configUIDRe.FindStringSubmatch(body)
	if m == nil {
		return "", "", errors.New("player config has no uid field")
	}
	if err := json.Unmarshal([]byte(m[1]), &uid); err != nil {
		return "", "", errors.Wrap(err, "failed to decode uid literal")
	}

	return ciphertextB64, uid, nil
}

// DecryptStreamURL decrypts a base64 AES-CBC ciphertext with the key
// derived from the session uid and the fixed IV, removing PKCS#7 padding.
func DecryptStreamURL(ciphertextB64, uid string) (string, error) {
	key := []byte(keyPrefix + uid + keySuffix)
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", errors.Wrap(err, "ciphertext is not valid base64")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Wrap(err, "invalid key length")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", errors.New("ciphertext is not a whole number of blocks")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(aesIV)).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", errors.New("decrypted url is not valid utf-8")
	}
	return string(plaintext), nil
}

// pkcs7Unpad removes block-size padding, rejecting malformed padding
// rather than returning a garbled URL.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded data length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, errors.New("invalid padding length")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("invalid padding byte")
		}
	}
	return data[:len(data)-padLen], nil
}

func hasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// fetchDocument GETs pageURL with the site headers and parses it.
func (r *Resolver) fetchDocument(pageURL, referer string) (*goquery.Document, error) {
	body, err := r.fetchBody(pageURL, referer)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse page")
	}
	return doc, nil
}

// fetchBody GETs pageURL and returns the body. Non-success status is a
// failure; the protocol never retries.
func (r *Resolver) fetchBody(pageURL, referer string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Referer", referer)

	r.logger.Debug("fetching", "url", pageURL)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("server returned: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}
	return string(body), nil
}
