package tracking

import "strings"

// DeviceType classifies the host device.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// PlatformInfo is the static environment snapshot attached to every event.
// It is derived once at SDK construction and never changes.
type PlatformInfo struct {
	DeviceType   DeviceType `json:"device_type,omitempty"`
	Browser      string     `json:"browser,omitempty"`
	OS           string     `json:"os,omitempty"`
	ScreenWidth  int        `json:"screen_width,omitempty"`
	ScreenHeight int        `json:"screen_height,omitempty"`
	Timezone     string     `json:"timezone,omitempty"`
	Language     string     `json:"language,omitempty"`
}

// CollectPlatformInfo derives the snapshot from raw environment values.
// A zero EnvironmentInfo (non-browser test harness) yields a zero snapshot.
func CollectPlatformInfo(env EnvironmentInfo) PlatformInfo {
	if env == (EnvironmentInfo{}) {
		return PlatformInfo{}
	}
	return PlatformInfo{
		DeviceType:   DetectDeviceType(env.UserAgent),
		Browser:      DetectBrowser(env.UserAgent),
		OS:           DetectOS(env.UserAgent),
		ScreenWidth:  env.ScreenWidth,
		ScreenHeight: env.ScreenHeight,
		Timezone:     env.Timezone,
		Language:     env.Language,
	}
}

// DetectDeviceType infers the device class from the agent string. Tablet
// indicators take precedence over mobile ones.
func DetectDeviceType(agent string) DeviceType {
	a := strings.ToLower(agent)
	switch {
	case strings.Contains(a, "ipad"), strings.Contains(a, "tablet"):
		return DeviceTablet
	case strings.Contains(a, "mobi"), strings.Contains(a, "iphone"), strings.Contains(a, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// DetectBrowser infers the browser family via ordered substring matching.
// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
func DetectBrowser(agent string) string {
	a := strings.ToLower(agent)
	switch {
	case strings.Contains(a, "edg"):
		return "edge"
	case strings.Contains(a, "opr"), strings.Contains(a, "opera"):
		return "opera"
	case strings.Contains(a, "chrome"):
		return "chrome"
	case strings.Contains(a, "firefox"):
		return "firefox"
	case strings.Contains(a, "safari"):
		return "safari"
	default:
		return "unknown"
	}
}

// DetectOS infers the operating system family via ordered substring matching.
func DetectOS(agent string) string {
	a := strings.ToLower(agent)
	switch {
	case strings.Contains(a, "iphone"), strings.Contains(a, "ipad"), strings.Contains(a, "ios"):
		return "ios"
	case strings.Contains(a, "android"):
		return "android"
	case strings.Contains(a, "windows"):
		return "windows"
	case strings.Contains(a, "mac os"), strings.Contains(a, "macintosh"), strings.Contains(a, "darwin"):
		return "macos"
	case strings.Contains(a, "linux"):
		return "linux"
	default:
		return "unknown"
	}
}
