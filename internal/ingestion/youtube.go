package ingestion

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
)

// DefaultYouTubeBaseURL is the Data API v3 root.
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

const (
	youtubePageSize       = 50
	youtubeDescriptionMax = 500
)

// YouTubeSource fetches the mostPopular chart of a region.
type YouTubeSource struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	region  string
	now     func() time.Time
}

// YouTubeOptions configures YouTubeSource.
type YouTubeOptions struct {
	Client  *httpx.Client
	BaseURL string // Default: DefaultYouTubeBaseURL
	APIKey  string
	Region  string // Default: US
	Now     func() time.Time
}

// NewYouTubeSource creates a YouTube source.
func NewYouTubeSource(opts YouTubeOptions) *YouTubeSource {
	s := &YouTubeSource{
		client:  opts.Client,
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		region:  opts.Region,
		now:     opts.Now,
	}
	if s.client == nil {
		s.client = httpx.NewClient()
	}
	if s.baseURL == "" {
		s.baseURL = DefaultYouTubeBaseURL
	}
	if s.region == "" {
		s.region = "US"
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Platform implements TrendSource.
func (s *YouTubeSource) Platform() domain.Platform { return domain.PlatformYouTube }

// Enabled implements TrendSource.
func (s *YouTubeSource) Enabled() bool { return s.apiKey != "" }

type youtubeThumb struct {
	URL string `json:"url"`
}

type youtubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string                  `json:"title"`
		Description  string                  `json:"description"`
		ChannelTitle string                  `json:"channelTitle"`
		CategoryID   string                  `json:"categoryId"`
		PublishedAt  time.Time               `json:"publishedAt"`
		Thumbnails   map[string]youtubeThumb `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type youtubeResponse struct {
	Items         []youtubeVideo `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// Fetch pages through the chart until limit items are collected or the
// chart ends.
func (s *YouTubeSource) Fetch(ctx context.Context, limit int) ([]*domain.TrendItem, error) {
	if !s.Enabled() {
		return nil, ErrSourceDisabled
	}
	if limit <= 0 {
		return nil, nil
	}

	now := s.now().UTC()
	var (
		items     []*domain.TrendItem
		pageToken string
	)

	for len(items) < limit {
		q := url.Values{}
		q.Set("part", "snippet,statistics")
		q.Set("chart", "mostPopular")
		q.Set("regionCode", s.region)
		q.Set("maxResults", strconv.Itoa(min(youtubePageSize, limit-len(items))))
		q.Set("key", s.apiKey)
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var resp youtubeResponse
		if err := s.client.GetJSON(ctx, s.baseURL+"/videos?"+q.Encode(), nil, &resp); err != nil {
			return items, fmt.Errorf("youtube videos: %w", err)
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, v := range resp.Items {
			items = append(items, s.toTrend(v, now))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *YouTubeSource) toTrend(v youtubeVideo, now time.Time) *domain.TrendItem {
	views := parseCount(v.Statistics.ViewCount)

	return &domain.TrendItem{
		Platform:     domain.PlatformYouTube,
		ExternalID:   v.ID,
		Title:        v.Snippet.Title,
		Description:  truncateRunes(v.Snippet.Description, youtubeDescriptionMax),
		ChannelTitle: v.Snippet.ChannelTitle,
		ThumbnailURL: bestThumbnail(v.Snippet.Thumbnails),
		URL:          "https://www.youtube.com/watch?v=" + v.ID,
		Category:     v.Snippet.CategoryID,
		Metrics: domain.TrendMetrics{
			Views:    views,
			Likes:    parseCount(v.Statistics.LikeCount),
			Comments: parseCount(v.Statistics.CommentCount),
		},
		TrendScore:  YouTubeScore(views, v.Snippet.PublishedAt, now),
		Region:      s.region,
		PublishedAt: v.Snippet.PublishedAt,
		LastUpdated: now,
	}
}

// YouTubeScore is the view velocity: views per day since publication,
// with the age floored at one day.
func YouTubeScore(views int64, publishedAt, now time.Time) float64 {
	days := math.Max(1, now.Sub(publishedAt).Hours()/24)
	return float64(views) / days
}

// bestThumbnail picks the highest resolution available.
func bestThumbnail(thumbs map[string]youtubeThumb) string {
	for _, key := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := thumbs[key]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
