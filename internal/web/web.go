// Package web содержит встроенные HTML-шаблоны и статические файлы приложения.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates возвращает файловую систему с шаблонами страниц.
func Templates() fs.FS {
	sub, _ := fs.Sub(templatesFS, "templates")
	return sub
}

// Static возвращает файловую систему со статикой (css, js).
func Static() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}
