// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FindFilesByExtension recursively searches the given root path of fs for all
// files ending with one of the given extensions. The result is sorted. A root
// that is itself a matching file is returned as the only element.
func FindFilesByExtension(fs billy.Filesystem, rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	err := util.Walk(fs, rootPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && HasExtension(info.Name(), extensions...) {
			files = append(files, path.Clean(p))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether name ends with any of the extensions,
// compared case-insensitively.
func HasExtension(name string, extensions ...string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
