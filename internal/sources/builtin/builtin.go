// Package builtin registers every source shipped with tagsync.
package builtin

import (
	"tagsync/internal/sources"
	"tagsync/internal/sources/asurascans"
	"tagsync/internal/sources/comix"
	"tagsync/internal/sources/nhentai"
)

func Registry() *sources.Registry {
	return sources.NewRegistry(
		asurascans.Definition(),
		comix.Definition(),
		nhentai.Definition(),
	)
}
