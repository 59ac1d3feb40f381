package core

import (
	"io/fs"
	"path"
)

// CopyFS copies the tree rooted at "." in src into dst under root,
// preserving directories (including empty ones) and permission bits.
//
// Example:
//
//	//go:embed testdata/tree
//	var tree embed.FS
//
//	mem := billy.NewMemory()
//	sub, _ := fs.Sub(tree, "testdata/tree")
//	err := core.CopyFS(mem, "/work", sub)
func CopyFS(dst FS, root string, src fs.FS) error {
	return fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := path.Join(root, name)
		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			return dst.MkdirAll(target, info.Mode().Perm()|0o700)
		}

		data, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}
		return dst.WriteFile(target, data, info.Mode().Perm())
	})
}
