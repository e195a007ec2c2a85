package export

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"
)

const mimeXML = "text/xml"

// CompactKML strips insignificant whitespace from a KML document.
func CompactKML(doc string) (string, error) {
	m := minify.New()
	m.AddFunc(mimeXML, xml.Minify)

	out, err := m.String(mimeXML, doc)
	if err != nil {
		return "", fmt.Errorf("minify kml: %w", err)
	}

	return out, nil
}
