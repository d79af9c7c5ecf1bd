package utils

import (
	"encoding/base64"
	"html/template"
	"time"
)

// TemplateFuncs are the helpers available to every page.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
}

// PNGDataURI embeds PNG bytes into an img src attribute. The challenge image
// never gets a URL of its own, so it cannot be fetched twice.
func PNGDataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}
