package notice

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/srv/site"

func folderPaths() Paths {
	return Paths{
		Root: testRoot,
		Folders: map[string]string{
			FolderFiles:    filepath.Join(testRoot, "public", "files"),
			FolderConfig:   filepath.Join(testRoot, "config"),
			FolderCache:    filepath.Join(testRoot, "var", "cache"),
			FolderDatabase: filepath.Join(testRoot, "var", "database"),
			FolderThumbs:   filepath.Join(testRoot, "public", "thumbs"),
		},
	}
}

func writableFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, dir := range folderPaths().Folders {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}
	return fs
}

// quietContext is a dashboard request on which no check fires.
func quietContext() Context {
	return Context{
		Route:           DashboardRoute,
		RequestURI:      "https://example.com/bolt/?tab=1",
		SchemeAndHost:   "https://example.com",
		HTTPHost:        "example.com",
		Environment:     "prod",
		Debug:           false,
		DatabaseDriver:  "sqlite",
		CanonicalScheme: "https",
		CanonicalHost:   "example.com",
		BackendPath:     "/bolt",
		ContentTypes: []ContentType{
			{Slug: "pages", SingularSlug: "page", Name: "Pages"},
			{Slug: "entries", SingularSlug: "entry", Name: "Entries"},
		},
		Taxonomies: []Taxonomy{
			{Slug: "tags", SingularSlug: "tag"},
			{Slug: "categories", SingularSlug: "category"},
		},
		KnownContentTypes: []string{"pages", "entries"},
		SaveThumbnails:    true,
		Paths:             folderPaths(),
		Capabilities:      Capabilities{EXIF: true, FileInfo: true, GD: true},
	}
}

func TestEvaluateQuietContext(t *testing.T) {
	e := New(WithFs(writableFs(t)))
	res := e.Evaluate(quietContext())
	assert.Empty(t, res.Notices)
	assert.Equal(t, SeverityNone, res.Severity)
}

func TestEvaluateNonDashboardRouteShortCircuits(t *testing.T) {
	c := quietContext()
	c.Route = "editcontent"
	c.Debug = true
	c.MaintenanceMode = true
	c.HTTPHost = "localhost"
	c.Capabilities = Capabilities{}

	probe := &countingProber{}
	res := New(WithProber(probe)).Evaluate(c)
	assert.True(t, res.Empty())
	assert.Equal(t, SeverityNone, res.Severity)
	assert.Zero(t, probe.calls, "no probe may run outside the dashboard")
}

func TestEvaluateSeverityIsMaximum(t *testing.T) {
	c := quietContext()
	c.MaintenanceMode = true                                           // 1
	c.ContentTypes = append(c.ContentTypes, ContentType{Slug: "news"}) // 3
	c.Taxonomies = append(c.Taxonomies, Taxonomy{Slug: "entries"})     // 2

	res := New(WithFs(writableFs(t))).Evaluate(c)
	require.Len(t, res.Notices, 3)
	assert.Equal(t, SeverityDanger, res.Severity)

	highest := SeverityNone
	for _, n := range res.Notices {
		if n.Severity > highest {
			highest = n.Severity
		}
	}
	assert.Equal(t, highest, res.Severity)
}

func TestEvaluateOrderFollowsChecks(t *testing.T) {
	c := quietContext()
	c.Debug = true
	c.HTTPHost = "intranet"
	c.SchemeAndHost = "https://intranet"
	c.RequestURI = "https://intranet/bolt/"
	c.MaintenanceMode = true

	res := New(WithFs(writableFs(t))).Evaluate(c)
	require.Len(t, res.Notices, 4)
	assert.Contains(t, res.Notices[0].Message, "non-development environment")
	assert.Contains(t, res.Notices[1].Message, "<tt>intranet</tt> as host name")
	assert.Contains(t, res.Notices[2].Message, "canonical hostname")
	assert.Contains(t, res.Notices[3].Message, "maintenance mode")
}

func TestEvaluatePanickingCheckDoesNotStopOthers(t *testing.T) {
	c := quietContext()
	c.MaintenanceMode = true

	e := New(
		WithFs(writableFs(t)),
		WithChecks(
			Check{Name: "boom", Run: func(*Context, Prober) []Notice { panic("broken check") }},
			Check{Name: "maintenance", Run: maintenanceCheck},
		),
	)
	res := e.Evaluate(c)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, SeverityInfo, res.Severity)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	c := quietContext()
	c.Debug = true
	c.HTTPHost = "localhost"
	c.SchemeAndHost = "http://localhost"
	c.RequestURI = "http://localhost/bolt/"

	e := New(WithFs(writableFs(t)))
	first := e.Evaluate(c)
	second := e.Evaluate(c)

	require.NotEmpty(t, first.Notices)
	assert.Equal(t, first, second)
}

func TestEvaluateDoesNotMutateContext(t *testing.T) {
	c := quietContext()
	c.LocalDomains = []string{".corp"}
	before := len(c.LocalDomains)
	New(WithFs(writableFs(t))).Evaluate(c)
	assert.Len(t, c.LocalDomains, before)
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "", SeverityNone.Label())
	assert.Equal(t, "info", SeverityInfo.Label())
	assert.Equal(t, "warning", SeverityWarning.Label())
	assert.Equal(t, "danger", SeverityDanger.Label())
}

type countingProber struct {
	calls int
	deny  map[string]bool
}

func (p *countingProber) Writable(dir string) bool {
	p.calls++
	return !p.deny[dir]
}

func TestResultAddKeepsOrder(t *testing.T) {
	var r Result
	r.add(Notice{Message: "a", Severity: SeverityWarning})
	r.add(Notice{Message: "b", Severity: SeverityInfo})
	r.add(Notice{Message: "c", Severity: SeverityDanger})

	msgs := make([]string, 0, len(r.Notices))
	for _, n := range r.Notices {
		msgs = append(msgs, n.Message)
	}
	assert.Equal(t, "a,b,c", strings.Join(msgs, ","))
	assert.Equal(t, SeverityDanger, r.Severity)
}
