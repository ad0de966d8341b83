package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the client device summary attached to request logs
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, bot, unknown
	Platform   string `json:"platform"`    // android, ios, windows, mac, linux
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// ParseUserAgent parses a User-Agent header
func ParseUserAgent(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{DeviceType: "unknown", Platform: "unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	browser := name
	if version != "" {
		browser = name + " " + version
	}

	info := DeviceInfo{
		Platform: getPlatform(parser),
		Browser:  browser,
		IsBot:    parser.Bot(),
	}

	switch {
	case info.IsBot:
		info.DeviceType = "bot"
	case parser.Mobile() && isTablet(userAgent):
		info.DeviceType = "tablet"
	case parser.Mobile():
		info.DeviceType = "mobile"
	default:
		info.DeviceType = "desktop"
	}
	return info
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	return strings.Contains(lower, "ipad") ||
		(strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"))
}

func getPlatform(parser *ua.UserAgent) string {
	os := strings.ToLower(parser.OS())
	platform := strings.ToLower(parser.Platform())

	switch {
	case strings.Contains(os, "android"):
		return "android"
	case strings.Contains(os, "iphone") || strings.Contains(os, "ipad") || strings.Contains(platform, "iphone") || strings.Contains(platform, "ipad"):
		return "ios"
	case strings.Contains(os, "windows"):
		return "windows"
	case strings.Contains(os, "mac os"):
		return "mac"
	case strings.Contains(os, "linux"):
		return "linux"
	default:
		return "unknown"
	}
}
