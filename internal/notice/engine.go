package notice

import (
	"fmt"

	"github.com/spf13/afero"

	"noticeboard/pkg/logx"
)

// Check is one independent inspection of the context. It may return any
// number of notices and must not keep state between calls.
type Check struct {
	Name string
	Run  func(c *Context, p Prober) []Notice
}

// DefaultChecks returns the checks in the order they are evaluated.
func DefaultChecks() []Check {
	return []Check{
		{Name: "live", Run: liveCheck},
		{Name: "new_content_type", Run: newContentTypeCheck},
		{Name: "duplicate_slugs", Run: duplicateSlugCheck},
		{Name: "single_hostname", Run: singleHostnameCheck},
		{Name: "ip_address", Run: ipAddressCheck},
		{Name: "sub_path", Run: subPathCheck},
		{Name: "writable_folders", Run: writableFolderCheck},
		{Name: "thumbs_folder", Run: thumbsFolderCheck},
		{Name: "canonical", Run: canonicalCheck},
		{Name: "image_capabilities", Run: imageCapabilityCheck},
		{Name: "maintenance", Run: maintenanceCheck},
	}
}

// Engine evaluates a fixed list of checks. It is safe for concurrent use as
// long as its Prober is.
type Engine struct {
	checks []Check
	prober Prober
	fs     afero.Fs
	log    logx.Logger
}

type Option func(*Engine)

// WithProber replaces the folder prober (default: OS filesystem).
func WithProber(p Prober) Option {
	return func(e *Engine) { e.prober = p }
}

// WithFs probes folders through fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithChecks replaces the check list. Mostly useful in tests.
func WithChecks(checks ...Check) Option {
	return func(e *Engine) { e.checks = append([]Check(nil), checks...) }
}

func WithLogger(log logx.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func New(opts ...Option) *Engine {
	e := &Engine{checks: DefaultChecks(), log: logx.Nop()}
	for _, o := range opts {
		o(e)
	}
	if e.prober == nil {
		e.prober = NewFsProber(e.fs, e.log)
	}
	return e
}

// Evaluate runs every check for the dashboard route and folds the notices in
// execution order. Other routes get an empty Result.
func (e *Engine) Evaluate(c Context) Result {
	if c.Route != DashboardRoute {
		return Result{}
	}
	var res Result
	for _, chk := range e.checks {
		for _, n := range e.run(chk, &c) {
			res.add(n)
		}
	}
	if !res.Empty() {
		e.log.Debug("notices collected", logx.Int("count", len(res.Notices)), logx.Int("severity", int(res.Severity)))
	}
	return res
}

// run isolates a check: a panic drops its notices but never the evaluation.
func (e *Engine) run(chk Check, c *Context) (out []Notice) {
	if chk.Run == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("notice check panicked", logx.String("check", chk.Name), logx.String("panic", fmt.Sprint(r)))
			out = nil
		}
	}()
	return chk.Run(c, e.prober)
}
