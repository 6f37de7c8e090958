package domain

// Platform identifies a trend source platform.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTwitch  Platform = "twitch"
)

// RegionGlobal marks trends that are not bound to a country.
const RegionGlobal = "GLOBAL"

// PlatformDescriptor describes the capabilities of a platform.
// Callers consult the descriptor instead of branching on the platform name.
type PlatformDescriptor struct {
	Platform             Platform
	Label                string
	SupportsRegionFilter bool
	// WatchURL builds a fallback public URL when the trend row carries none.
	WatchURL func(externalID, channel string) string
}

// Platforms is the descriptor table, in dashboard display order.
var Platforms = []PlatformDescriptor{
	{
		Platform:             PlatformYouTube,
		Label:                "YouTube",
		SupportsRegionFilter: true,
		WatchURL: func(externalID, _ string) string {
			return "https://www.youtube.com/watch?v=" + externalID
		},
	},
	{
		Platform:             PlatformTwitch,
		Label:                "Twitch",
		SupportsRegionFilter: false,
		WatchURL: func(_, channel string) string {
			return "https://www.twitch.tv/" + channel
		},
	},
}

// Describe returns the descriptor for p.
func Describe(p Platform) (PlatformDescriptor, bool) {
	for _, d := range Platforms {
		if d.Platform == p {
			return d, true
		}
	}
	return PlatformDescriptor{}, false
}

// IsValid reports whether p is a known platform.
func (p Platform) IsValid() bool {
	_, ok := Describe(p)
	return ok
}
