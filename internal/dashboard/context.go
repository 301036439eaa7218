package dashboard

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"noticeboard/internal/config"
	"noticeboard/internal/notice"
)

// Request is the part of an incoming request the notice context needs.
type Request struct {
	Route  string
	Scheme string // "http" or "https"
	Host   string // host[:port] as sent by the client
	URI    string // path plus optional "?query"
	Prefix string // path prefix added by a reverse proxy
}

// RequestFromHTTP reads r. Forwarded headers are honoured only when
// trustProxy is set; otherwise any client could spoof them.
func RequestFromHTTP(r *http.Request, route string, trustProxy bool) Request {
	req := Request{
		Route:  route,
		Scheme: "http",
		Host:   r.Host,
		URI:    r.URL.RequestURI(),
	}
	if r.TLS != nil {
		req.Scheme = "https"
	}
	if !trustProxy {
		return req
	}
	if v := strings.ToLower(firstHeaderValue(r, "X-Forwarded-Proto")); v == "http" || v == "https" {
		req.Scheme = v
	}
	if v := firstHeaderValue(r, "X-Forwarded-Host"); v != "" {
		req.Host = v
	}
	if v := firstHeaderValue(r, "X-Forwarded-Prefix"); v != "" {
		req.Prefix = v
	}
	return req
}

func firstHeaderValue(r *http.Request, name string) string {
	v := r.Header.Get(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// RequestFromURL builds a Request from an absolute URL, e.g. for a check
// run from the command line.
func RequestFromURL(raw, route string) (Request, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Request{}, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Request{}, fmt.Errorf("url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return Request{}, fmt.Errorf("url %q: host is required", raw)
	}
	return Request{
		Route:  route,
		Scheme: u.Scheme,
		Host:   u.Host,
		URI:    u.RequestURI(),
	}, nil
}

// BuildContext assembles the notice context for one evaluation. known is the
// content-type list of the cached routing requirement, nil when it was never
// built.
func BuildContext(cfg *config.Config, configPath string, known []string, req Request) notice.Context {
	schemeAndHost := req.Scheme + "://" + req.Host
	prefix := proxyPrefix(req.Prefix)
	root, folders := cfg.ResolvePaths(configPath)

	c := notice.Context{
		Route:         req.Route,
		RequestURI:    schemeAndHost + prefix + req.URI,
		SchemeAndHost: schemeAndHost,
		HTTPHost:      req.Host,
		BaseURL:       strings.TrimRight(prefix+cfg.Server.MountPath, "/"),

		Environment:    cfg.Runtime.Environment,
		Debug:          cfg.Runtime.Debug,
		DatabaseDriver: cfg.Database.Driver,

		CanonicalScheme: cfg.Server.CanonicalScheme,
		CanonicalHost:   cfg.Server.CanonicalHost,
		BackendPath:     prefix + cfg.Server.MountPath + cfg.Server.BackendPath,

		KnownContentTypes: slices.Clone(known),
		LocalDomains:      append([]string(nil), cfg.Notices.LocalDomains...),

		MaintenanceMode: cfg.Site.MaintenanceMode,
		SaveThumbnails:  cfg.Site.Thumbnails.SaveFiles,

		Paths: notice.Paths{Root: root, Folders: folders},
		Capabilities: notice.Capabilities{
			EXIF:     config.ImageEnabled(cfg.Image.EXIF),
			FileInfo: config.ImageEnabled(cfg.Image.FileInfo),
			GD:       config.ImageEnabled(cfg.Image.GD),
		},
	}
	for _, ct := range cfg.Site.ContentTypes {
		c.ContentTypes = append(c.ContentTypes, notice.ContentType{Slug: ct.Slug, SingularSlug: ct.SingularSlug, Name: ct.Name})
	}
	for _, tx := range cfg.Site.Taxonomies {
		c.Taxonomies = append(c.Taxonomies, notice.Taxonomy{Slug: tx.Slug, SingularSlug: tx.SingularSlug})
	}
	return c
}

// proxyPrefix normalizes a forwarded path prefix to "/a/b" form, or "" for none.
func proxyPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// ContentTypeSlugs lists the configured content types in order.
func ContentTypeSlugs(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Site.ContentTypes))
	for _, ct := range cfg.Site.ContentTypes {
		out = append(out, ct.Slug)
	}
	return out
}
