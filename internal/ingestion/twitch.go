package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
)

// Default Twitch endpoints.
const (
	DefaultTwitchAuthURL = "https://id.twitch.tv/oauth2/token"
	DefaultTwitchAPIURL  = "https://api.twitch.tv/helix"
)

// twitchMaxPage is the Helix cap on streams?first=N.
const twitchMaxPage = 100

// TwitchSource fetches the top live streams. Streams are not region bound.
type TwitchSource struct {
	client       *httpx.Client
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// TwitchOptions configures TwitchSource.
type TwitchOptions struct {
	Client       *httpx.Client
	AuthURL      string
	APIURL       string
	ClientID     string
	ClientSecret string
	Now          func() time.Time
}

// NewTwitchSource creates a Twitch source.
func NewTwitchSource(opts TwitchOptions) *TwitchSource {
	s := &TwitchSource{
		client:       opts.Client,
		authURL:      opts.AuthURL,
		apiURL:       opts.APIURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		now:          opts.Now,
	}
	if s.client == nil {
		s.client = httpx.NewClient()
	}
	if s.authURL == "" {
		s.authURL = DefaultTwitchAuthURL
	}
	if s.apiURL == "" {
		s.apiURL = DefaultTwitchAPIURL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Platform implements TrendSource.
func (s *TwitchSource) Platform() domain.Platform { return domain.PlatformTwitch }

// Enabled implements TrendSource.
func (s *TwitchSource) Enabled() bool { return s.clientID != "" && s.clientSecret != "" }

type twitchToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type twitchStream struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	GameName     string    `json:"game_name"`
	Title        string    `json:"title"`
	ViewerCount  int64     `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

type twitchStreams struct {
	Data []twitchStream `json:"data"`
}

// Fetch returns up to limit top streams (capped at 100 by Helix).
func (s *TwitchSource) Fetch(ctx context.Context, limit int) ([]*domain.TrendItem, error) {
	if !s.Enabled() {
		return nil, ErrSourceDisabled
	}
	if limit <= 0 {
		return nil, nil
	}
	if limit > twitchMaxPage {
		limit = twitchMaxPage
	}

	streams, err := s.streams(ctx, limit)
	if httpx.IsStatus(err, http.StatusUnauthorized) {
		// Token revoked or expired early; retry once with a fresh one.
		s.invalidateToken()
		streams, err = s.streams(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	items := make([]*domain.TrendItem, 0, len(streams))
	for _, st := range streams {
		items = append(items, &domain.TrendItem{
			Platform:     domain.PlatformTwitch,
			ExternalID:   st.ID,
			Title:        st.Title,
			Description:  fmt.Sprintf("Playing %s - %s", st.GameName, st.Language),
			ChannelTitle: st.UserName,
			ThumbnailURL: TwitchThumbnail(st.ThumbnailURL),
			URL:          "https://www.twitch.tv/" + st.UserName,
			Category:     st.GameName,
			Metrics: domain.TrendMetrics{
				Viewers:  st.ViewerCount,
				Language: st.Language,
			},
			TrendScore:  TwitchScore(st.ViewerCount),
			Region:      domain.RegionGlobal,
			PublishedAt: st.StartedAt,
			LastUpdated: now,
		})
	}
	return items, nil
}

func (s *TwitchSource) streams(ctx context.Context, limit int) ([]twitchStream, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Client-ID", s.clientID)
	header.Set("Authorization", "Bearer "+token)

	var resp twitchStreams
	if err := s.client.GetJSON(ctx, s.apiURL+"/streams?first="+strconv.Itoa(limit), header, &resp); err != nil {
		return nil, fmt.Errorf("twitch streams: %w", err)
	}
	return resp.Data, nil
}

// accessToken returns a cached app token, requesting a new one when expired.
func (s *TwitchSource) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.tokenExpiry) {
		return s.token, nil
	}

	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("grant_type", "client_credentials")

	var tok twitchToken
	if err := s.client.PostForm(ctx, s.authURL, form, &tok); err != nil {
		return "", fmt.Errorf("twitch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("twitch token: empty access_token")
	}

	s.token = tok.AccessToken
	// Refresh a minute early.
	s.tokenExpiry = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return s.token, nil
}

func (s *TwitchSource) invalidateToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// TwitchScore scales concurrent viewers down to the YouTube score range.
func TwitchScore(viewers int64) float64 {
	return float64(viewers) / 100.0
}

// TwitchThumbnail fills the size template of a stream preview URL.
func TwitchThumbnail(template string) string {
	return strings.NewReplacer("{width}", "600", "{height}", "400").Replace(template)
}
