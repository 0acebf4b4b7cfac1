// Package content embeds the default cheatsheet library, the category table
// and the frontmatter schema into the binary.
package content

import (
	"embed"
	"io/fs"
)

//go:embed library
var library embed.FS

// CategoriesYAML is the default category table.
//
//go:embed categories.yaml
var CategoriesYAML []byte

// FrontmatterSchema is the JSON Schema every cheatsheet frontmatter must satisfy.
//
//go:embed frontmatter.schema.json
var FrontmatterSchema string

// Library returns the embedded library rooted at the category directories.
func Library() fs.FS {
	sub, err := fs.Sub(library, "library")
	if err != nil {
		panic(err)
	}
	return sub
}
