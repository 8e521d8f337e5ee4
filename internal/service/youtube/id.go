package youtube

import (
	"net/url"
	"strings"
)

// ExtractVideoID extracts the YouTube video ID from any accepted URL shape:
// youtu.be/<id>, watch?v=<id>, /shorts/<id> and /embed/<id>. It returns an
// empty string when no pattern matches and never fails; the ID is the
// de-duplication key for the whole queue, so two URLs naming the same video
// must always yield the same result.
func ExtractVideoID(videoURL string) string {
	raw := strings.TrimSpace(videoURL)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	// Scheme-less input like "youtu.be/abc" parses as a path
	if u.Host == "" && !strings.Contains(raw, "://") {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return ""
		}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch host {
	case "youtu.be":
		return firstPathSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return firstPathSegment(strings.TrimPrefix(u.Path, prefix))
			}
		}
	}

	return ""
}

// firstPathSegment returns the leading path segment without slashes
func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
