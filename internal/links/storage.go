package links

import "regexp"

// Options controls storage URL rewriting. It is passed by value into every
// component that rewrites URLs.
type Options struct {
	// StripStorage enables replacing the course-data bucket host.
	StripStorage bool
	// StaticPrefix replaces the bucket host when stripping. Empty means
	// root-relative.
	StaticPrefix string
}

// storageURLPattern matches the course-data bucket host for http and https,
// including suffixed buckets such as open-learning-course-data-production.
var storageURLPattern = regexp.MustCompile(`(?i)https?://open-learning-course-data([^/\s"'<>]*)\.s3\.amazonaws\.com`)

// StripStoragePrefix rewrites bucket URLs in s according to opts. Any number of
// URLs may appear in s; non-matching text passes through unchanged.
func StripStoragePrefix(s string, opts Options) string {
	if !opts.StripStorage || s == "" {
		return s
	}
	return storageURLPattern.ReplaceAllLiteralString(s, opts.StaticPrefix)
}
