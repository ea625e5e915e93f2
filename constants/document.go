package constants

import "strings"

// DocumentType is the classification assigned to an analyzed document.
type DocumentType string

// Stable values (store these exact strings in DB).
const (
	DocumentTypeInvoice     DocumentType = "FACTURA"
	DocumentTypeInformation DocumentType = "INFORMACION"
)

// FileFormat groups file extensions into extraction strategies.
type FileFormat string

const (
	PDF   FileFormat = "PDF"
	IMAGE FileFormat = "IMAGE"
	CSV   FileFormat = "CSV"
)

// AllowedDocumentExtensions holds the file extensions accepted by the
// document analysis endpoint.
var AllowedDocumentExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its FileFormat,
// or "" when the extension is not supported.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	case "csv":
		return CSV
	default:
		return ""
	}
}
