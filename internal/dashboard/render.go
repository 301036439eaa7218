package dashboard

import (
	"embed"
	"html/template"
	"io"

	"noticeboard/internal/notice"
	"noticeboard/internal/storage"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

type page struct {
	Label         string
	Notices       []pageNotice
	Audit         []storage.AuditEntry
	ClearCacheURL string
	Cleared       bool
}

// pageNotice carries notice text as trusted HTML: checks escape every
// dynamic value they interpolate and only add fixed markup.
type pageNotice struct {
	Label   string
	Message template.HTML
	Detail  template.HTML
}

func newPage(res notice.Result, audit []storage.AuditEntry, clearURL string, cleared bool) page {
	p := page{
		Label:         res.Severity.Label(),
		Audit:         audit,
		ClearCacheURL: clearURL,
		Cleared:       cleared,
	}
	for _, n := range res.Notices {
		p.Notices = append(p.Notices, pageNotice{
			Label:   n.Severity.Label(),
			Message: template.HTML(n.Message),
			Detail:  template.HTML(n.Detail),
		})
	}
	return p
}

func renderPage(w io.Writer, p page) error {
	return pageTmpl.Execute(w, p)
}
