package constants

import "strings"

// SourceKinds holds the allowed values for the source_kind column of parse_run.
var SourceKinds = []string{"PDF", "TXT", "INLINE"}

// AllowedExtensions holds the file extensions picked up by directory batches.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SourceKindForExt maps a file extension to its source kind.
func SourceKindForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "PDF"
	case "txt":
		return "TXT"
	default:
		return "INLINE"
	}
}
