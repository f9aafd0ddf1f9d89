package upload

import (
	"strings"

	"github.com/dropzone/dropzone/pkg/format"
)

// DefaultMaxFileSize is the largest accepted file (100 MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// DefaultAllowedTypes are MIME prefixes (or exact types) accepted for upload.
var DefaultAllowedTypes = []string{
	"image/",
	"video/",
	"audio/",
	"application/pdf",
	"text/",
	"application/zip",
	"application/x-rar",
}

// Rules decides which files may be uploaded.
type Rules struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// DefaultRules returns the 100 MB limit and the default type list.
func DefaultRules() Rules {
	return Rules{
		MaxFileSize:  DefaultMaxFileSize,
		AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
	}
}

// Validate returns a *ValidationError when f must not be uploaded. The size
// check runs first, so an oversized file of a bad type reports its size.
func (r Rules) Validate(f File) error {
	if r.MaxFileSize > 0 && f.Size > r.MaxFileSize {
		return newTooLargeError(f, r.MaxFileSize, format.ByteSize(r.MaxFileSize))
	}

	if !r.allowsType(f.MIMEType) {
		return newUnsupportedTypeError(f)
	}

	return nil
}

// An allowed entry matches as a prefix, which covers both the "image/"
// style entries and exact types such as "application/pdf".
func (r Rules) allowsType(mimeType string) bool {
	if mimeType == "" {
		return false
	}
	for _, allowed := range r.AllowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return true
		}
	}
	return false
}
