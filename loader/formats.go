package loader

import (
	"path/filepath"
	"slices"
	"strings"
)

var supportedExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
	"tif": {}, "tiff": {}, "tga": {}, "bmp": {}, "ico": {},
	"hdr": {}, "pbm": {}, "pam": {}, "ppm": {}, "pgm": {},
}

// IsSupported reports whether filename carries an image extension the
// loader accepts. The match is case-insensitive. A leading dot alone does
// not make an extension, so ".png" as a whole file name is rejected.
func IsSupported(filename string) bool {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return false
	}

	_, ok := supportedExtensions[strings.ToLower(ext[1:])]
	return ok
}

// SupportedExtensions returns the accepted extensions, lower-case, without
// the dot, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
