package notice

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
)

// ellipsis replaces the root path when folders are shown to the admin.
const ellipsis = "…"

// sqliteDrivers are database drivers that keep their data in a local file.
var sqliteDrivers = map[string]struct{}{
	"sqlite":     {},
	"sqlite3":    {},
	"pdo_sqlite": {},
}

func usesFileDatabase(driver string) bool {
	_, ok := sqliteDrivers[strings.ToLower(strings.TrimSpace(driver))]
	return ok
}

// writableFolderCheck probes each data folder independently and emits one
// notice per folder that rejects a probe file. Unconfigured folders are skipped.
func writableFolderCheck(c *Context, p Prober) []Notice {
	folders := []string{FolderFiles, FolderConfig, FolderCache}
	if usesFileDatabase(c.DatabaseDriver) {
		folders = append(folders, FolderDatabase)
	}

	var out []Notice
	for _, name := range folders {
		path, ok := c.Paths.Resolve(name)
		if !ok || p == nil || p.Writable(path) {
			continue
		}
		shown := displayPath(c.Paths.Root, path)
		out = append(out, Notice{
			Message: fmt.Sprintf("The site needs to be able to <strong>write files to</strong> the %q folder "+
				"(<tt>%s</tt>), but it doesn't seem to be writable.", name, html.EscapeString(shown)),
			Detail:   fmt.Sprintf("Make sure the folder <tt>%s</tt> exists, and is writable to the webserver.", html.EscapeString(shown)),
			Severity: SeverityWarning,
		})
	}
	return out
}

func thumbsFolderCheck(c *Context, p Prober) []Notice {
	if !c.SaveThumbnails {
		return nil
	}
	path, ok := c.Paths.Resolve(FolderThumbs)
	if !ok || p == nil || p.Writable(path) {
		return nil
	}
	shown := displayPath(c.Paths.Root, path)
	return []Notice{{
		Message: "The site is configured to save thumbnails to disk for performance, but the " +
			"<tt>thumbs/</tt> folder doesn't seem to be writable.",
		Detail:   fmt.Sprintf("Make sure the folder <tt>%s</tt> exists, and is writable to the webserver.", html.EscapeString(shown)),
		Severity: SeverityWarning,
	}}
}

// displayPath hides the installation root behind an ellipsis.
func displayPath(root, path string) string {
	root = strings.TrimSpace(root)
	if root == "" || path == "" {
		return path
	}
	root = filepath.Clean(root)
	clean := filepath.Clean(path)
	if clean == root {
		return ellipsis
	}
	if rel, err := filepath.Rel(root, clean); err == nil && !strings.HasPrefix(rel, "..") {
		return ellipsis + string(filepath.Separator) + rel
	}
	return path
}
