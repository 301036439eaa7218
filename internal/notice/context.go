package notice

// DashboardRoute is the only route for which checks run.
const DashboardRoute = "dashboard"

// Logical folder names understood by Paths.
const (
	FolderFiles    = "files"
	FolderConfig   = "config"
	FolderCache    = "cache"
	FolderDatabase = "database"
	FolderThumbs   = "thumbs"
)

type ContentType struct {
	Slug         string `json:"slug"`
	SingularSlug string `json:"singular_slug,omitempty"`
	Name         string `json:"name,omitempty"`
}

type Taxonomy struct {
	Slug         string `json:"slug"`
	SingularSlug string `json:"singular_slug,omitempty"`
}

// Capabilities reports which image toolchain features are available.
type Capabilities struct {
	EXIF     bool `json:"exif"`
	FileInfo bool `json:"fileinfo"`
	GD       bool `json:"gd"`
}

// Paths resolves logical folder names to filesystem paths.
type Paths struct {
	Root    string            `json:"root"`
	Folders map[string]string `json:"folders"`
}

// Resolve returns the path for a logical folder and whether it is configured.
func (p Paths) Resolve(name string) (string, bool) {
	if p.Folders == nil {
		return "", false
	}
	path, ok := p.Folders[name]
	return path, ok && path != ""
}

// Context is everything a check may look at. It is built per request by the
// caller and never mutated by the engine.
type Context struct {
	Route string

	// Request-derived values. RequestURI is absolute (scheme://host/path?query),
	// SchemeAndHost is "scheme://host[:port]", HTTPHost is "host[:port]" and
	// BaseURL is the mount prefix in front of the application root.
	RequestURI    string
	SchemeAndHost string
	HTTPHost      string
	BaseURL       string

	Environment    string
	Debug          bool
	DatabaseDriver string

	CanonicalScheme string
	CanonicalHost   string
	BackendPath     string

	ContentTypes []ContentType
	Taxonomies   []Taxonomy
	// KnownContentTypes is nil while the routing requirement has never been
	// built, and empty (not nil) once it was built with no content types.
	KnownContentTypes []string
	LocalDomains      []string

	MaintenanceMode bool
	SaveThumbnails  bool

	Paths        Paths
	Capabilities Capabilities
}
