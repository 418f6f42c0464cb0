package utils

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// SafeObjectName turns an uploaded filename into a slug usable as an object
// key segment, without its extension. suffix keeps repeated uploads distinct.
func SafeObjectName(filename, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := slug.Make(base)
	if name == "" {
		name = "upload"
	}
	if suffix == "" {
		return name
	}
	return name + "-" + suffix
}
