package processor

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// contentTypeByExt maps image file extension to its media type.
func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// imgTypeByExt returns decoder name matching the extension.
func imgTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".svg":
		return "svg"
	case ".webp":
		return "webp"
	default:
		return strings.TrimPrefix(strings.ToLower(ext), ".")
	}
}

// extFromURL extracts lowercased file extension from URL path, query and fragment stripped.
func extFromURL(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return strings.ToLower(filepath.Ext(ref))
}

// extFromData sniffs the extension out of downloaded bytes when the URL has none.
func extFromData(data []byte) string {
	if t, err := filetype.Match(data); err == nil && t != filetype.Unknown {
		return "." + t.Extension
	}
	return ".jpg"
}
