package arpoone

import "strings"

// MaxAttachmentSize is the largest decoded attachment the provider
// accepts, in bytes.
const MaxAttachmentSize = 5 * 1024 * 1024

// AttachmentWithinLimit reports whether the decoded size of a
// base64-encoded attachment is at most MaxAttachmentSize. The size is
// derived from the encoded length adjusted for trailing padding, so the
// content is never decoded.
func AttachmentWithinLimit(base64Content string) bool {
	encodedLen := len(base64Content)

	padding := 0
	if encodedLen >= 2 {
		padding = strings.Count(base64Content[encodedLen-2:], "=")
	} else {
		padding = strings.Count(base64Content, "=")
	}

	originalSize := encodedLen*3/4 - padding

	return originalSize <= MaxAttachmentSize
}
