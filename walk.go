package fspath

import (
	"errors"
	"io/fs"
	"math"
	"os"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// WalkOption configures WalkFileTree.
type WalkOption func(*walkOptions)

type walkOptions struct {
	maxDepth    int
	followLinks bool
}

// WithMaxDepth limits how many levels below the start are visited. Entries at
// the limit are passed to VisitFile even when they are directories. A depth of
// 0 visits only the start.
func WithMaxDepth(depth int) WalkOption {
	return func(o *walkOptions) {
		o.maxDepth = max(depth, 0)
	}
}

// WithFollowLinks follows symbolic links to directories. Directory cycles are
// reported to VisitFileFailed with CodeLoop.
func WithFollowLinks() WalkOption {
	return func(o *walkOptions) {
		o.followLinks = true
	}
}

// WalkFileTree walks the tree rooted at start depth first and returns start.
//
// For each directory the visitor sees PreVisitDirectory, the entries in host
// order, then PostVisitDirectory. Entries whose attributes cannot be read and
// directories that cannot be listed go to VisitFileFailed. Terminate ends the
// walk without error; SkipSubtree and SkipSiblings returned by
// PreVisitDirectory skip the directory's entries and its PostVisitDirectory,
// and SkipSiblings also skips the rest of the parent's entries. An error from
// any visitor method ends the walk and is returned.
//
// Example:
//
//	var names []string
//	_, err := fspath.WalkFileTree("/srv", fspath.NaiveVisitor{
//	    Visit: func(p fspath.Path) (fspath.FileVisitResult, error) {
//	        names = append(names, p.String())
//	        return fspath.Continue, nil
//	    },
//	})
func WalkFileTree(start any, v FileVisitor, opts ...WalkOption) (Path, error) {
	root, err := openPath("walk", start)
	if err != nil {
		return Path{}, err
	}
	o := walkOptions{maxDepth: math.MaxInt}
	for _, opt := range opts {
		opt(&o)
	}

	w := &walker{fsys: root.fsys, visitor: v, opts: o}
	root.fsys.logger.Debug("walk started", "start", root.String(), "max_depth", o.maxDepth, "follow_links", o.followLinks)
	res, err := w.walk(root, 0, nil)
	if err != nil {
		root.fsys.logger.Debug("walk failed", "start", root.String(), "error", err)
		return Path{}, err
	}
	root.fsys.logger.Debug("walk finished", "start", root.String(), "terminated", res == Terminate)
	return root, nil
}

type walker struct {
	fsys    *FileSystem
	visitor FileVisitor
	opts    walkOptions
}

// ancestor is an open directory on the current walk path, kept for loop
// detection.
type ancestor struct {
	info fs.FileInfo
	real string
}

// walk visits p and its entries. The returned result tells the caller how to
// treat p's siblings: Terminate stops the walk and SkipSiblings skips the
// remaining entries; anything else continues.
func (w *walker) walk(p Path, depth int, ancestors []ancestor) (FileVisitResult, error) {
	info, err := w.attributes(p)
	if err != nil {
		return w.visitor.VisitFileFailed(p, hostError("walk", p, err))
	}
	if !info.IsDir() || depth >= w.opts.maxDepth {
		return w.visitor.VisitFile(p, info)
	}

	if w.opts.followLinks {
		self := ancestor{info: info}
		if resolved, err := w.fsys.realPath(p, true); err == nil {
			self.real = resolved
		}
		if isLoop(self, ancestors) {
			loop := fserrors.WithContextMap(
				fserrors.New(fserrors.CodeLoop, "file system loop detected"),
				map[string]any{"op": "walk", "path": p.String()})
			return w.visitor.VisitFileFailed(p, loop)
		}
		ancestors = append(ancestors, self)
	}

	entries, listErr := w.fsys.host.ReadDir(p.hostName())
	if listErr != nil && len(entries) == 0 {
		return w.visitor.VisitFileFailed(p, hostError("walk", p, listErr))
	}

	res, err := w.visitor.PreVisitDirectory(p, info)
	if err != nil || res != Continue {
		return res, err
	}

	for _, entry := range entries {
		res, err := w.walk(p.Resolve(newPath(w.fsys, entry.Name())), depth+1, ancestors)
		if err != nil {
			return res, err
		}
		if res == Terminate {
			return Terminate, nil
		}
		if res == SkipSiblings {
			break
		}
	}

	var postErr error
	if listErr != nil {
		postErr = hostError("walk", p, listErr)
	}
	res, err = w.visitor.PostVisitDirectory(p, postErr)
	if err != nil || res == Terminate {
		return res, err
	}
	return Continue, nil
}

// attributes reads the metadata of p. When following links, a dangling link
// is reported as the link itself.
func (w *walker) attributes(p Path) (fs.FileInfo, error) {
	name := p.hostName()
	if !w.opts.followLinks {
		return w.fsys.lstat(name)
	}
	info, err := w.fsys.host.Stat(name)
	if err == nil {
		return info, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if linfo, lerr := w.fsys.lstat(name); lerr == nil {
			return linfo, nil
		}
	}
	return nil, err
}

func isLoop(self ancestor, ancestors []ancestor) bool {
	for _, a := range ancestors {
		if os.SameFile(a.info, self.info) {
			return true
		}
		if a.real != "" && a.real == self.real {
			return true
		}
	}
	return false
}
