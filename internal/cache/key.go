package cache

import (
	"net/url"
	"strings"
)

// Key normalizes a source URL so equivalent links share one cache entry.
// YouTube watch, short and youtu.be links collapse to the canonical watch URL;
// bare video ids are expanded the same way. Other URLs keep their path and
// query with scheme and host lower-cased and the fragment dropped.
func Key(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") && !strings.ContainsAny(raw, "/.?") {
		return canonicalWatch(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "music.")

	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return canonicalWatch(id)
		}
	case "youtube.com":
		if id := u.Query().Get("v"); id != "" && u.Path == "/watch" {
			return canonicalWatch(id)
		}
		if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && rest != "" {
			return canonicalWatch(strings.Trim(rest, "/"))
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String()
}

func canonicalWatch(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
