// Package device derives coarse client metadata from the User-Agent header
// for login audit logs. Nothing here feeds authorization decisions.
package device

import "github.com/mssola/useragent"

// Info is the parsed device summary attached to login log lines.
type Info struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// Parse extracts device info from a raw User-Agent value. Empty input
// yields a zero Info.
func Parse(rawUA string) Info {
	if rawUA == "" {
		return Info{}
	}

	ua := useragent.New(rawUA)
	name, version := ua.Browser()

	browser := name
	if version != "" {
		browser = name + "/" + version
	}

	return Info{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
