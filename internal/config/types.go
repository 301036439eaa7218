package config

// Config is the site configuration snapshot the dashboard works from.
//
// Files may be JSON or YAML (by extension); both are decoded strictly, so
// unknown keys are rejected.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Runtime  RuntimeConfig  `json:"runtime"`
	Database DatabaseConfig `json:"database"`
	Paths    PathsConfig    `json:"paths,omitempty"`
	Site     SiteConfig     `json:"site"`
	Notices  NoticesConfig  `json:"notices,omitempty"`
	Image    ImageConfig    `json:"image,omitempty"`
	Logging  LoggingConfig  `json:"logging"`

	// Storage keeps the routing requirement cache. Nil means in-memory only.
	Storage *StorageConfig `json:"storage,omitempty"`
}

// ServerConfig controls the admin HTTP server and the canonical URL.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Security note:
//   - Prefer binding to localhost (the default).
//   - A non-loopback addr requires a token or an explicit allow_insecure.
type ServerConfig struct {
	Addr          string `json:"addr,omitempty"`         // default: "127.0.0.1:8080"
	BackendPath   string `json:"backend_path,omitempty"` // default: "/bolt"
	MountPath     string `json:"mount_path,omitempty"`   // prefix in front of the app root, if any
	TrustProxy    bool   `json:"trust_proxy,omitempty"`  // honour X-Forwarded-Proto/Host/Prefix
	Token         string `json:"token,omitempty"`        // optional bearer token (do not log)
	AllowInsecure bool   `json:"allow_insecure,omitempty"`

	CanonicalScheme string `json:"canonical_scheme,omitempty"` // default: "https"
	CanonicalHost   string `json:"canonical_host,omitempty"`

	// RatePerSec bounds dashboard evaluations (each one probes the disk).
	RatePerSec int `json:"rate_per_sec,omitempty"`

	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
}

type RuntimeConfig struct {
	Environment string `json:"environment"` // "prod", "dev", ...
	Debug       bool   `json:"debug"`
}

type DatabaseConfig struct {
	Driver string `json:"driver"` // e.g. "sqlite", "mysql", "postgres"
}

// PathsConfig maps logical folders to paths. Relative folder paths are
// resolved against Root; a relative Root is resolved against the directory
// holding the config file.
type PathsConfig struct {
	Root     string `json:"root,omitempty"`
	Files    string `json:"files,omitempty"`
	Config   string `json:"config,omitempty"`
	Cache    string `json:"cache,omitempty"`
	Database string `json:"database,omitempty"`
	Thumbs   string `json:"thumbs,omitempty"`
}

type SiteConfig struct {
	MaintenanceMode bool                `json:"maintenance_mode"`
	Thumbnails      ThumbnailsConfig    `json:"thumbnails,omitempty"`
	ContentTypes    []ContentTypeConfig `json:"content_types"`
	Taxonomies      []TaxonomyConfig    `json:"taxonomies,omitempty"`
}

type ThumbnailsConfig struct {
	SaveFiles bool `json:"save_files"`
}

// ContentTypeConfig is kept as a list so the configured order survives YAML.
type ContentTypeConfig struct {
	Slug         string `json:"slug"`
	SingularSlug string `json:"singular_slug,omitempty"` // default: slug
	Name         string `json:"name,omitempty"`          // default: slug
}

type TaxonomyConfig struct {
	Slug         string `json:"slug"`
	SingularSlug string `json:"singular_slug,omitempty"`
	Name         string `json:"name,omitempty"`
}

// NoticesConfig holds settings specific to the dashboard notices.
type NoticesConfig struct {
	// LocalDomains are extra host substrings that mark a development machine.
	LocalDomains []string `json:"local_domains,omitempty"`
}

// ImageConfig declares which image features the platform provides.
// Omitted fields default to true.
type ImageConfig struct {
	EXIF     *bool `json:"exif,omitempty"`
	FileInfo *bool `json:"fileinfo,omitempty"`
	GD       *bool `json:"gd,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./var/noticeboard.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}
