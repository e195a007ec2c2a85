package export

import "strings"

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// escapeXML escapes XML special characters and drops code points that are
// not allowed in XML 1.0 documents.
func escapeXML(s string) string {
	return xmlReplacer.Replace(strings.Map(xmlChar, s))
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r < 0x20:
		return -1
	case r == 0xFFFE || r == 0xFFFF:
		return -1
	}

	return r
}
