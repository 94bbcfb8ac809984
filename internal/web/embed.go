package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed static templates
var files embed.FS

var (
	// StaticFS serves the embedded CSS and JS, rooted at static/.
	StaticFS = mustSub(files, "static")

	// Templates holds the page and its partials: index.html, "header" and
	// "upload_form".
	Templates = template.Must(template.New("").ParseFS(files,
		"templates/*.html",
		"templates/partials/*.html",
	))
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("web: %s: %v", dir, err))
	}
	return sub
}
