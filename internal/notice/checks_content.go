package notice

import (
	"fmt"
	"html"
	"strings"
)

// newContentTypeCheck reports the first content type that was added after the
// routing requirement was last rebuilt. Only the first offender is reported.
func newContentTypeCheck(c *Context, _ Prober) []Notice {
	if c.KnownContentTypes == nil {
		return nil
	}
	known := make(map[string]struct{}, len(c.KnownContentTypes))
	for _, slug := range c.KnownContentTypes {
		known[slug] = struct{}{}
	}
	for _, ct := range c.ContentTypes {
		if ct.Slug == "" {
			continue
		}
		if _, ok := known[ct.Slug]; ok {
			continue
		}
		name := ct.Name
		if name == "" {
			name = ct.Slug
		}
		return []Notice{{
			Message: fmt.Sprintf("It seems like you have added a new ContentType <strong>%s</strong> (<tt>%s</tt>), "+
				"but the routing cache has not been rebuilt since.",
				html.EscapeString(name), html.EscapeString(ct.Slug)),
			Detail:   "Clear the cache to make the new ContentType reachable: <a href=\"#clearcache\">clear the cache</a>.",
			Severity: SeverityDanger,
		}}
	}
	return nil
}

// duplicateSlugCheck reports identifiers used by both a content type and a taxonomy.
func duplicateSlugCheck(c *Context, _ Prober) []Notice {
	taxonomySlugs := make(map[string]struct{}, 2*len(c.Taxonomies))
	for _, t := range c.Taxonomies {
		for _, s := range []string{t.Slug, t.SingularSlug} {
			if s != "" {
				taxonomySlugs[s] = struct{}{}
			}
		}
	}
	if len(taxonomySlugs) == 0 {
		return nil
	}

	var overlap []string
	seen := map[string]struct{}{}
	for _, ct := range c.ContentTypes {
		for _, s := range []string{ct.Slug, ct.SingularSlug} {
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if _, ok := taxonomySlugs[s]; ok {
				overlap = append(overlap, html.EscapeString(s))
			}
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	return []Notice{{
		Message: fmt.Sprintf("The identifiers and slugs for the following ContentTypes and Taxonomies are identical, "+
			"which might cause issues: <tt>%s</tt>", strings.Join(overlap, "</tt>, <tt>")),
		Detail:   "Make sure the slugs and singular slugs for all ContentTypes and Taxonomies are unique.",
		Severity: SeverityWarning,
	}}
}
