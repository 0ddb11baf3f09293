package session

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceDisplayName derives a human-readable device label from a User-Agent
// string, e.g. "Chrome on macOS". Used only for session display metadata.
func DeviceDisplayName(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown browser"
	}
	os = strings.TrimSpace(os)
	if os == "" {
		return browser
	}
	return browser + " on " + os
}
