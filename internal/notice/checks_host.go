package notice

import (
	"fmt"
	"html"
	"strings"
)

// defaultLocalDomains are host substrings that always count as development.
var defaultLocalDomains = []string{
	".dev",
	"dev.",
	"devel.",
	"development.",
	"test.",
	".test",
	"new.",
	".new",
	".local",
	"local.",
	".wip",
}

// DefaultLocalDomains returns a copy of the built-in development host substrings.
func DefaultLocalDomains() []string {
	return append([]string(nil), defaultLocalDomains...)
}

func isProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}

// liveCheck warns when debug output is enabled on what looks like a public host.
func liveCheck(c *Context, _ Prober) []Notice {
	if isProduction(c.Environment) && !c.Debug {
		return nil
	}
	host := strings.ToLower(hostOfURL(c.SchemeAndHost))
	if host == "" || isIP(host) {
		return nil
	}
	for _, partial := range localDomainPartials(c.LocalDomains) {
		if strings.Contains(host, partial) {
			return nil
		}
	}
	return []Notice{{
		Message: "It seems like this website is running on a <strong>non-development environment</strong>, " +
			"while 'debug' is enabled. Make sure debug is disabled in production environments. " +
			"If you don't do this, it will have a negative impact on performance and security.",
		Detail: fmt.Sprintf("Debug mode is enabled for <tt>%s</tt> (environment <tt>%s</tt>). "+
			"If this is a development machine, add a part of its hostname to <tt>notices.local_domains</tt> in the configuration.",
			html.EscapeString(host), html.EscapeString(c.Environment)),
		Severity: SeverityWarning,
	}}
}

// localDomainPartials merges configured partials with the defaults, dropping
// empties and duplicates while keeping order.
func localDomainPartials(configured []string) []string {
	out := make([]string, 0, len(configured)+len(defaultLocalDomains))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]string{configured, defaultLocalDomains} {
		for _, p := range list {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

const hostnameSessionHint = "If you experience difficulties logging on, either configure your webserver " +
	"to use a hostname with a dot in it, or use another browser."

func singleHostnameCheck(c *Context, _ Prober) []Notice {
	host := hostOnly(c.HTTPHost)
	if host == "" || strings.Contains(host, ".") {
		return nil
	}
	return []Notice{{
		Message: fmt.Sprintf("You are using <tt>%s</tt> as host name. Some browsers have problems with sessions "+
			"on hostnames that do not have a <tt>.tld</tt> in them.", html.EscapeString(c.HTTPHost)),
		Detail:   hostnameSessionHint,
		Severity: SeverityInfo,
	}}
}

func ipAddressCheck(c *Context, _ Prober) []Notice {
	host := hostOnly(c.HTTPHost)
	if !isIP(host) {
		return nil
	}
	return []Notice{{
		Message: fmt.Sprintf("You are using the <strong>IP address</strong> <tt>%s</tt> as host name. "+
			"This is known to cause problems with sessions on certain browsers.", html.EscapeString(host)),
		Detail:   hostnameSessionHint,
		Severity: SeverityInfo,
	}}
}

func subPathCheck(c *Context, _ Prober) []Notice {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return nil
	}
	return []Notice{{
		Message: fmt.Sprintf("You are running this site in the subfolder <tt>%s</tt>, "+
			"<strong>instead of the web root</strong>.", html.EscapeString(base)),
		Detail: "It is recommended to serve the site from the web root, so that it is in the top level. " +
			"If you only want to use it for parts of a website, consider a subdomain like <tt>news.example.org</tt> instead.",
		Severity: SeverityInfo,
	}}
}

// canonicalCheck compares the scheme and host the admin is using with the
// configured canonical ones. Ports are not compared.
func canonicalCheck(c *Context, _ Prober) []Notice {
	wantHost := strings.ToLower(strings.TrimSpace(c.CanonicalHost))
	if wantHost == "" {
		return nil
	}
	wantScheme := strings.ToLower(strings.TrimSpace(c.CanonicalScheme))
	if wantScheme == "" {
		wantScheme = "https"
	}
	scheme, host, ok := schemeAndHost(c.RequestURI)
	if !ok {
		return nil
	}
	if scheme == wantScheme && host == hostOnly(wantHost) {
		return nil
	}

	canonical := wantScheme + "://" + wantHost
	login := canonical + c.BackendPath
	return []Notice{{
		Message: fmt.Sprintf("The <tt>canonical hostname</tt> is set to <tt>%s</tt> in the configuration, "+
			"but you are currently logged in using another hostname. "+
			"This might cause issues with uploaded files, or links inserted in the content.",
			html.EscapeString(canonical)),
		Detail: fmt.Sprintf("This is just a reminder. When you're done, you could <a href=\"%s\">log in on %s</a>, "+
			"and check if everything works as expected.",
			html.EscapeString(login), html.EscapeString(wantHost)),
		Severity: SeverityInfo,
	}}
}

func maintenanceCheck(c *Context, _ Prober) []Notice {
	if !c.MaintenanceMode {
		return nil
	}
	return []Notice{{
		Message: "The site's <strong>maintenance mode</strong> is enabled. This means that non-authenticated users " +
			"will not be able to see the website.",
		Detail:   "To make the site available to the general public again, set <code>site.maintenance_mode: false</code> in the configuration.",
		Severity: SeverityInfo,
	}}
}
