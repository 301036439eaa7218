// Package routing builds the content-type routing requirement and maps
// backend request paths to route names.
package routing

import (
	"strings"

	"noticeboard/internal/notice"
)

// Route names.
const (
	Dashboard  = notice.DashboardRoute
	ClearCache = "clearcache"
	Notices    = "notices"
	Backend    = "backend"
)

// BuildRequirement joins slugs into the pipe-delimited requirement used by
// content routes. Empty slugs and duplicates are dropped; order is kept.
func BuildRequirement(slugs []string) string {
	return strings.Join(clean(slugs), "|")
}

// ParseRequirement is the inverse of BuildRequirement. The result is never nil.
func ParseRequirement(req string) []string {
	return clean(strings.Split(req, "|"))
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Match returns the route name for path under backendPath, or "" when the
// path is outside the backend. The backend root matches with or without a
// trailing slash.
func Match(path, backendPath string) string {
	base := "/" + strings.Trim(backendPath, "/")
	if base == "/" {
		base = ""
	}
	if path != base && !strings.HasPrefix(path, base+"/") {
		return ""
	}
	rest := strings.Trim(strings.TrimPrefix(path, base), "/")
	switch rest {
	case "":
		return Dashboard
	case ClearCache:
		return ClearCache
	case Notices:
		return Notices
	default:
		return Backend
	}
}
