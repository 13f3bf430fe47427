package dotxfile

import "strings"

// lossyUTF8 decodes raw as UTF-8, substituting U+FFFD for any invalid
// byte sequences rather than failing (spec S4.2).
func lossyUTF8(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}
