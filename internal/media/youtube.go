package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lazypower/resonate/internal/config"
	"github.com/tidwall/gjson"
)

const (
	initialDataMarker    = "var ytInitialData ="
	playerResponseMarker = "var ytInitialPlayerResponse ="

	// Watch pages render fine for a generic desktop agent; the mobile
	// variant uses different renderer names.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// YouTube scrapes video metadata from public YouTube pages.
type YouTube struct {
	http    *http.Client
	baseURL string
}

// NewYouTube creates a scraping client from config.
func NewYouTube(cfg config.YouTubeConfig) *YouTube {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YouTube{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// GetDetails fetches the watch page for a video id and extracts title,
// keywords, and the ordered suggestion list. Both page data and player
// response come from the same document, so a single fetch serves both.
func (y *YouTube) GetDetails(ctx context.Context, videoID string) (*Video, error) {
	page, err := y.fetchPage(ctx, y.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, err
	}

	initData, ok := extractJSON(page, initialDataMarker)
	if !ok {
		return nil, fmt.Errorf("watch page for %s: %w", videoID, ErrNotFound)
	}
	playerData, ok := extractJSON(page, playerResponseMarker)
	if !ok {
		return nil, fmt.Errorf("player data for %s: %w", videoID, ErrNotFound)
	}

	details := gjson.Get(playerData, "videoDetails")
	if details.Get("videoId").String() == "" {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	watchNext := gjson.Get(initData, "contents.twoColumnWatchNextResults")
	title := watchNext.Get("results.results.contents.0.videoPrimaryInfoRenderer.title.runs.0.text").String()
	if title == "" {
		title = details.Get("title").String()
	}
	if title == "" {
		return nil, fmt.Errorf("video %s has no title: %w", videoID, ErrNotFound)
	}

	channel := details.Get("author").String()
	if channel == "" {
		channel = watchNext.Get("results.results.contents.1.videoSecondaryInfoRenderer.owner.videoOwnerRenderer.title.runs.0.text").String()
	}

	var keywords []string
	details.Get("keywords").ForEach(func(_, kw gjson.Result) bool {
		keywords = append(keywords, kw.String())
		return true
	})

	var suggestions []Suggestion
	watchNext.Get("secondaryResults.secondaryResults.results").ForEach(func(_, item gjson.Result) bool {
		ren := item.Get("compactVideoRenderer")
		if !ren.Exists() || ren.Get("videoId").String() == "" {
			return true
		}
		suggestions = append(suggestions, Suggestion{
			ID:      ren.Get("videoId").String(),
			Title:   ren.Get("title.simpleText").String(),
			Channel: ren.Get("shortBylineText.runs.0.text").String(),
			Length:  ren.Get("lengthText.simpleText").String(),
		})
		return true
	})

	return &Video{
		ID:            details.Get("videoId").String(),
		Title:         title,
		Channel:       channel,
		ChannelID:     details.Get("channelId").String(),
		Description:   details.Get("shortDescription").String(),
		Keywords:      keywords,
		Views:         details.Get("viewCount").Int(),
		LengthSeconds: details.Get("lengthSeconds").Int(),
		Published:     watchNext.Get("results.results.contents.0.videoPrimaryInfoRenderer.dateText.simpleText").String(),
		Suggestions:   suggestions,
	}, nil
}

// Search fetches the results page for a query and extracts ranked videos.
func (y *YouTube) Search(ctx context.Context, query string) ([]Suggestion, error) {
	page, err := y.fetchPage(ctx, y.baseURL+"/results?search_query="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	initData, ok := extractJSON(page, initialDataMarker)
	if !ok {
		return nil, fmt.Errorf("search page for %q: %w", query, ErrNotFound)
	}

	var results []Suggestion
	sections := gjson.Get(initData,
		"contents.twoColumnSearchResultsRenderer.primaryContents.sectionListRenderer.contents")
	sections.ForEach(func(_, section gjson.Result) bool {
		section.Get("itemSectionRenderer.contents").ForEach(func(_, item gjson.Result) bool {
			ren := item.Get("videoRenderer")
			if !ren.Exists() || ren.Get("videoId").String() == "" {
				return true
			}
			results = append(results, Suggestion{
				ID:      ren.Get("videoId").String(),
				Title:   ren.Get("title.runs.0.text").String(),
				Channel: ren.Get("ownerText.runs.0.text").String(),
				Length:  ren.Get("lengthText.simpleText").String(),
			})
			return true
		})
		return true
	})

	return results, nil
}

func (y *YouTube) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := y.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}

// extractJSON pulls the inline JSON blob following a script marker.
// Returns false when the marker or its closing script tag is missing.
func extractJSON(page, marker string) (string, bool) {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return "", false
	}
	rest := page[idx+len(marker):]
	end := strings.Index(rest, "</script>")
	if end < 0 {
		return "", false
	}
	blob := strings.TrimSpace(rest[:end])
	blob = strings.TrimSuffix(blob, ";")
	if !gjson.Valid(blob) {
		return "", false
	}
	return blob, true
}
