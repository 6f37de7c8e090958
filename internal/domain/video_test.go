package domain

import (
	"testing"
	"time"
)

func TestNormalizeVideo_InboxItem(t *testing.T) {
	published := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	v, ok := NormalizeVideo(VideoSource{Trend: &TrendItem{
		ID:           "t1",
		Platform:     PlatformYouTube,
		ExternalID:   "abc123",
		Title:        "Video",
		ChannelTitle: "Canal",
		Metrics:      TrendMetrics{Views: 1200},
		TrendScore:   400,
		Region:       "BR",
		PublishedAt:  published,
	}})
	if !ok {
		t.Fatal("expected video")
	}

	if v.Ref != (VideoRef{Origin: OriginTrend, ID: "t1"}) {
		t.Errorf("unexpected ref %+v", v.Ref)
	}
	if v.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("expected youtube fallback url, got %s", v.URL)
	}
	if v.Status != StatePending {
		t.Errorf("expected PENDING, got %s", v.Status)
	}
	if v.Views != 1200 || v.Growth != 400 {
		t.Errorf("unexpected counters views=%d growth=%f", v.Views, v.Growth)
	}
	if v.SavedAt != nil {
		t.Error("inbox item must not carry savedAt")
	}
}

func TestNormalizeVideo_RepositoryItem(t *testing.T) {
	saved := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	v, ok := NormalizeVideo(VideoSource{
		Trend: &TrendItem{
			ID:           "t2",
			Platform:     PlatformTwitch,
			ExternalID:   "stream-9",
			ChannelTitle: "gaules",
			Metrics:      TrendMetrics{Viewers: 35000, Language: "pt"},
		},
		Entry: &RepositoryEntry{ID: "r1", TrendID: "t2", Status: RepositoryInProgress, SavedAt: saved},
	})
	if !ok {
		t.Fatal("expected video")
	}

	if v.Ref != (VideoRef{Origin: OriginRepository, ID: "r1"}) {
		t.Errorf("unexpected ref %+v", v.Ref)
	}
	if v.URL != "https://www.twitch.tv/gaules" {
		t.Errorf("expected twitch fallback url, got %s", v.URL)
	}
	if v.Views != 35000 {
		t.Errorf("expected viewers as views, got %d", v.Views)
	}
	if v.Status != StateInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", v.Status)
	}
	if v.SavedAt == nil || !v.SavedAt.Equal(saved) {
		t.Errorf("unexpected savedAt %v", v.SavedAt)
	}
}

func TestNormalizeVideo_MissingTrend(t *testing.T) {
	if _, ok := NormalizeVideo(VideoSource{Entry: &RepositoryEntry{ID: "r1"}}); ok {
		t.Error("expected no video without a trend row")
	}
}

func TestTriageState_RepositoryMapping(t *testing.T) {
	for _, s := range []TriageState{StateApproved, StateInProgress, StateFinished, StateIgnored} {
		if got := StateFromRepository(s.RepositoryStatus()); got != s {
			t.Errorf("%s: round trip through repository status gave %s", s, got)
		}
	}
	if StatePending.RepositoryStatus() != "" {
		t.Error("pending must not map to a repository status")
	}
}

func TestDescribe_RegionCapability(t *testing.T) {
	yt, ok := Describe(PlatformYouTube)
	if !ok || !yt.SupportsRegionFilter {
		t.Error("youtube must support region filtering")
	}
	tw, ok := Describe(PlatformTwitch)
	if !ok || tw.SupportsRegionFilter {
		t.Error("twitch must not support region filtering")
	}
	if Platform("vimeo").IsValid() {
		t.Error("unknown platform reported valid")
	}
}
