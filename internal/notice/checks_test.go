package notice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveCheck(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		debug    bool
		host     string
		partials []string
		fires    bool
	}{
		{name: "prod without debug", env: "prod", debug: false, host: "https://myapp.example.com", fires: false},
		{name: "prod with debug", env: "prod", debug: true, host: "https://myapp.example.com", fires: true},
		{name: "dev env on public host", env: "dev", debug: false, host: "https://myapp.example.com", fires: true},
		{name: "ipv4 host", env: "dev", debug: true, host: "http://192.168.1.5", fires: false},
		{name: "ipv4 host with port", env: "dev", debug: true, host: "http://192.168.1.5:8000", fires: false},
		{name: "ipv6 host", env: "dev", debug: true, host: "http://[::1]:8000", fires: false},
		{name: "default partial suffix", env: "dev", debug: true, host: "http://mysite.test", fires: false},
		{name: "default partial prefix", env: "dev", debug: true, host: "http://dev.mysite.com", fires: false},
		{name: "wip", env: "dev", debug: true, host: "http://mysite.wip", fires: false},
		{name: "configured partial", env: "dev", debug: true, host: "http://staging.corp.example", partials: []string{"staging."}, fires: false},
		{name: "configured partial case", env: "dev", debug: true, host: "http://Staging.Example.com", partials: []string{"STAGING."}, fires: false},
		{name: "production alias", env: "production", debug: false, host: "https://example.com", fires: false},
		{name: "no host", env: "dev", debug: true, host: "", fires: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Context{Environment: tc.env, Debug: tc.debug, SchemeAndHost: tc.host, LocalDomains: tc.partials}
			got := liveCheck(c, nil)
			if tc.fires {
				require.Len(t, got, 1)
				assert.Equal(t, SeverityWarning, got[0].Severity)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestNewContentTypeCheckReportsFirstMismatchOnly(t *testing.T) {
	c := &Context{
		ContentTypes: []ContentType{
			{Slug: "page"},
			{Slug: "news"},
			{Slug: "events", Name: "Events"},
		},
		KnownContentTypes: []string{"page"},
		BackendPath:       "/bolt",
	}
	got := newContentTypeCheck(c, nil)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityDanger, got[0].Severity)
	assert.Contains(t, got[0].Message, "<tt>news</tt>")
	assert.NotContains(t, got[0].Message, "events")
	assert.Contains(t, got[0].Detail, `href="#clearcache"`)
}

func TestNewContentTypeCheckAfterEmptyBuild(t *testing.T) {
	c := &Context{
		ContentTypes:      []ContentType{{Slug: "news", Name: "News"}},
		KnownContentTypes: []string{},
	}
	got := newContentTypeCheck(c, nil)
	require.Len(t, got, 1, "a requirement built with no content types still counts as built")
	assert.Equal(t, SeverityDanger, got[0].Severity)
	assert.Contains(t, got[0].Message, "<tt>news</tt>")
}

func TestNewContentTypeCheckQuietCases(t *testing.T) {
	assert.Empty(t, newContentTypeCheck(&Context{}, nil), "empty context")
	assert.Empty(t, newContentTypeCheck(&Context{
		ContentTypes: []ContentType{{Slug: "page"}},
	}, nil), "requirement never built")
	assert.Empty(t, newContentTypeCheck(&Context{
		ContentTypes:      []ContentType{{Slug: "page"}, {Slug: "news"}},
		KnownContentTypes: []string{"news", "page", "removed"},
	}, nil), "all known")
}

func TestDuplicateSlugCheck(t *testing.T) {
	c := &Context{
		ContentTypes: []ContentType{
			{Slug: "event", SingularSlug: "event"},
			{Slug: "pages", SingularSlug: "page"},
			{Slug: "tags", SingularSlug: "tag"},
		},
		Taxonomies: []Taxonomy{
			{Slug: "event", SingularSlug: "event"},
			{Slug: "tags", SingularSlug: "tag"},
			{Slug: "groups", SingularSlug: "group"},
		},
	}
	got := duplicateSlugCheck(c, nil)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityWarning, got[0].Severity)
	assert.Equal(t, 1, strings.Count(got[0].Message, "<tt>event</tt>"), "each overlap listed once")
	assert.Contains(t, got[0].Message, "<tt>event</tt>, <tt>tags</tt>, <tt>tag</tt>")
	assert.NotContains(t, got[0].Message, "page")
}

func TestDuplicateSlugCheckSingularOnly(t *testing.T) {
	c := &Context{
		ContentTypes: []ContentType{{Slug: "news", SingularSlug: "item"}},
		Taxonomies:   []Taxonomy{{Slug: "items", SingularSlug: "item"}},
	}
	got := duplicateSlugCheck(c, nil)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "<tt>item</tt>")
}

func TestDuplicateSlugCheckNoOverlap(t *testing.T) {
	c := &Context{
		ContentTypes: []ContentType{{Slug: "pages", SingularSlug: "page"}},
		Taxonomies:   []Taxonomy{{Slug: "tags"}},
	}
	assert.Empty(t, duplicateSlugCheck(c, nil))
	assert.Empty(t, duplicateSlugCheck(&Context{}, nil))
}

func TestHostnameChecks(t *testing.T) {
	cases := []struct {
		host   string
		single bool
		ip     bool
	}{
		{host: "localhost", single: true, ip: false},
		{host: "localhost:8000", single: true, ip: false},
		{host: "example.com", single: false, ip: false},
		{host: "192.168.1.5", single: false, ip: true},
		{host: "192.168.1.5:8080", single: false, ip: true},
		{host: "[::1]:8000", single: true, ip: true},
		{host: "", single: false, ip: false},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			c := &Context{HTTPHost: tc.host}
			single := singleHostnameCheck(c, nil)
			ip := ipAddressCheck(c, nil)
			assert.Equal(t, tc.single, len(single) == 1, "single hostname notice")
			assert.Equal(t, tc.ip, len(ip) == 1, "ip notice")
			for _, n := range append(single, ip...) {
				assert.Equal(t, SeverityInfo, n.Severity)
			}
		})
	}
}

func TestHostnameCheckEscapesHost(t *testing.T) {
	c := &Context{HTTPHost: "<script>"}
	got := singleHostnameCheck(c, nil)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0].Message, "<script>")
	assert.Contains(t, got[0].Message, "&lt;script&gt;")
}

func TestSubPathCheck(t *testing.T) {
	assert.Empty(t, subPathCheck(&Context{}, nil))
	got := subPathCheck(&Context{BaseURL: "/cms"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityInfo, got[0].Severity)
	assert.Contains(t, got[0].Message, "/cms")
}

func TestCanonicalCheck(t *testing.T) {
	base := Context{CanonicalScheme: "https", CanonicalHost: "example.com", BackendPath: "/bolt"}

	cases := []struct {
		name  string
		uri   string
		fires bool
	}{
		{name: "match", uri: "https://example.com/bolt/", fires: false},
		{name: "match ignores query", uri: "https://example.com/bolt/?next=http://other.org", fires: false},
		{name: "case-insensitive", uri: "HTTPS://Example.COM/bolt", fires: false},
		{name: "scheme mismatch", uri: "http://example.com/bolt/", fires: true},
		{name: "host mismatch", uri: "https://www.example.com/bolt/", fires: true},
		{name: "port ignored", uri: "https://example.com:8443/bolt/", fires: false},
		{name: "default port ignored", uri: "https://example.com:443/bolt/", fires: false},
		{name: "scheme mismatch with port", uri: "http://example.com:8080/bolt/", fires: true},
		{name: "unparseable", uri: "::not a url", fires: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			c.RequestURI = tc.uri
			got := canonicalCheck(&c, nil)
			if !tc.fires {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, SeverityInfo, got[0].Severity)
			assert.Contains(t, got[0].Message, "<tt>https://example.com</tt>")
			assert.Contains(t, got[0].Detail, `href="https://example.com/bolt"`)
		})
	}
}

func TestCanonicalCheckIgnoresPorts(t *testing.T) {
	for _, uri := range []string{"http://example.com:8080/bolt/", "http://example.com:80/bolt/"} {
		c := &Context{CanonicalScheme: "http", CanonicalHost: "example.com", RequestURI: uri}
		assert.Empty(t, canonicalCheck(c, nil), uri)
	}
	c := &Context{CanonicalScheme: "https", CanonicalHost: "example.com:8443", RequestURI: "https://example.com/bolt/"}
	assert.Empty(t, canonicalCheck(c, nil), "canonical host with a port")
}

func TestCanonicalCheckWithoutCanonicalHost(t *testing.T) {
	c := &Context{RequestURI: "http://anything.example/bolt"}
	assert.Empty(t, canonicalCheck(c, nil))
}

func TestCanonicalCheckDefaultsScheme(t *testing.T) {
	c := &Context{CanonicalHost: "example.com", RequestURI: "http://example.com/"}
	got := canonicalCheck(c, nil)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "https://example.com")
}

func TestImageCapabilityCheck(t *testing.T) {
	assert.Empty(t, imageCapabilityCheck(&Context{Capabilities: Capabilities{EXIF: true, FileInfo: true, GD: true}}, nil))

	got := imageCapabilityCheck(&Context{}, nil)
	require.Len(t, got, 3)
	assert.Contains(t, got[0].Message, "exif_read_data")
	assert.Contains(t, got[1].Message, "finfo")
	assert.Contains(t, got[2].Message, "GD")
	for _, n := range got {
		assert.Equal(t, SeverityInfo, n.Severity)
		assert.NotEmpty(t, n.Detail)
	}

	got = imageCapabilityCheck(&Context{Capabilities: Capabilities{EXIF: true, GD: true}}, nil)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "finfo")
}

func TestMaintenanceCheck(t *testing.T) {
	assert.Empty(t, maintenanceCheck(&Context{}, nil))
	got := maintenanceCheck(&Context{MaintenanceMode: true}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityInfo, got[0].Severity)
}

func TestWritableFolderCheck(t *testing.T) {
	paths := folderPaths()
	cacheDir := paths.Folders[FolderCache]

	t.Run("all writable", func(t *testing.T) {
		p := &countingProber{}
		c := &Context{Paths: paths}
		assert.Empty(t, writableFolderCheck(c, p))
		assert.Equal(t, 3, p.calls, "files, config and cache")
	})

	t.Run("one failing folder", func(t *testing.T) {
		p := &countingProber{deny: map[string]bool{cacheDir: true}}
		c := &Context{Paths: paths}
		got := writableFolderCheck(c, p)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityWarning, got[0].Severity)
		assert.Contains(t, got[0].Message, `"cache"`)
		assert.Contains(t, got[0].Message, "<tt>…/var/cache</tt>")
		assert.NotContains(t, got[0].Message, testRoot)
	})

	t.Run("no early exit", func(t *testing.T) {
		p := &countingProber{deny: map[string]bool{
			paths.Folders[FolderFiles]:  true,
			paths.Folders[FolderConfig]: true,
			cacheDir:                    true,
		}}
		got := writableFolderCheck(&Context{Paths: paths}, p)
		assert.Len(t, got, 3)
		assert.Equal(t, 3, p.calls)
	})

	t.Run("sqlite adds database folder", func(t *testing.T) {
		for _, driver := range []string{"sqlite", "pdo_sqlite", "SQLite3"} {
			p := &countingProber{deny: map[string]bool{paths.Folders[FolderDatabase]: true}}
			got := writableFolderCheck(&Context{Paths: paths, DatabaseDriver: driver}, p)
			require.Len(t, got, 1, driver)
			assert.Contains(t, got[0].Message, `"database"`)
			assert.Equal(t, 4, p.calls)
		}
	})

	t.Run("server database skips database folder", func(t *testing.T) {
		p := &countingProber{deny: map[string]bool{paths.Folders[FolderDatabase]: true}}
		assert.Empty(t, writableFolderCheck(&Context{Paths: paths, DatabaseDriver: "mysql"}, p))
		assert.Equal(t, 3, p.calls)
	})

	t.Run("unconfigured folder is skipped", func(t *testing.T) {
		p := &countingProber{}
		c := &Context{Paths: Paths{Root: testRoot, Folders: map[string]string{FolderFiles: paths.Folders[FolderFiles]}}}
		assert.Empty(t, writableFolderCheck(c, p))
		assert.Equal(t, 1, p.calls)
	})
}

func TestThumbsFolderCheck(t *testing.T) {
	paths := folderPaths()
	deny := &countingProber{deny: map[string]bool{paths.Folders[FolderThumbs]: true}}

	assert.Empty(t, thumbsFolderCheck(&Context{Paths: paths, SaveThumbnails: false}, deny))
	assert.Zero(t, deny.calls, "disabled thumbnail saving must not probe")

	got := thumbsFolderCheck(&Context{Paths: paths, SaveThumbnails: true}, deny)
	require.Len(t, got, 1)
	assert.Equal(t, SeverityWarning, got[0].Severity)
	assert.Contains(t, got[0].Detail, "…/public/thumbs")

	assert.Empty(t, thumbsFolderCheck(&Context{Paths: paths, SaveThumbnails: true}, &countingProber{}))
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "…/var/cache", displayPath("/srv/site", "/srv/site/var/cache"))
	assert.Equal(t, "…/var/cache", displayPath("/srv/site/", "/srv/site/var/cache/"))
	assert.Equal(t, "…", displayPath("/srv/site", "/srv/site"))
	assert.Equal(t, "/tmp/elsewhere", displayPath("/srv/site", "/tmp/elsewhere"))
	assert.Equal(t, "/srv/site2/x", displayPath("/srv/site", "/srv/site2/x"))
	assert.Equal(t, "relative", displayPath("", "relative"))
}
