package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dialect возвращает миграции для диалекта ("postgres" или "sqlite")
func Dialect(name string) (fs.FS, error) {
	return fs.Sub(files, name)
}
