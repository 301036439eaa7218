package notice

// imageCapabilityCheck emits one notice per missing image feature.
func imageCapabilityCheck(c *Context, _ Prober) []Notice {
	var out []Notice
	if !c.Capabilities.EXIF {
		out = append(out, Notice{
			Message: "The image toolchain doesn't have the <tt>exif_read_data</tt> function available. " +
				"Without it, the site will not be able to detect the orientation of uploaded images.",
			Detail:   "Enable EXIF support for your platform (for example the <tt>exif</tt> extension) and set <code>image.exif: true</code>.",
			Severity: SeverityInfo,
		})
	}
	if !c.Capabilities.FileInfo {
		out = append(out, Notice{
			Message: "The image toolchain doesn't have the <tt>finfo</tt> class available. " +
				"Without it, the site will not be able to reliably detect the MIME type of uploaded files.",
			Detail:   "Enable file-info support for your platform (for example the <tt>fileinfo</tt> extension) and set <code>image.fileinfo: true</code>.",
			Severity: SeverityInfo,
		})
	}
	if !c.Capabilities.GD {
		out = append(out, Notice{
			Message: "The image toolchain doesn't have the <tt>GD</tt> library available. " +
				"Without it, the site will not be able to generate thumbnails.",
			Detail:   "Install an image manipulation library for your platform (for example the <tt>gd</tt> extension) and set <code>image.gd: true</code>.",
			Severity: SeverityInfo,
		})
	}
	return out
}
