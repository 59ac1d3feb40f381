package fspath

import "io/fs"

// FileVisitResult tells WalkFileTree how to continue.
type FileVisitResult int

const (
	// Continue visits the next entry. It is the zero value.
	Continue FileVisitResult = iota
	// Terminate ends the walk without error.
	Terminate
	// SkipSubtree skips the children of the directory being pre-visited.
	SkipSubtree
	// SkipSiblings skips the remaining entries of the current directory.
	SkipSiblings
)

func (r FileVisitResult) String() string {
	switch r {
	case Continue:
		return "CONTINUE"
	case Terminate:
		return "TERMINATE"
	case SkipSubtree:
		return "SKIP_SUBTREE"
	case SkipSiblings:
		return "SKIP_SIBLINGS"
	default:
		return "FileVisitResult(?)"
	}
}

// FileVisitor receives the events of WalkFileTree. A non-nil error from any
// method ends the walk and is returned by WalkFileTree.
type FileVisitor interface {
	// PreVisitDirectory is called before the entries of dir are visited.
	PreVisitDirectory(dir Path, info fs.FileInfo) (FileVisitResult, error)

	// VisitFile is called for every non-directory entry, and for directories
	// at the maximum depth.
	VisitFile(file Path, info fs.FileInfo) (FileVisitResult, error)

	// VisitFileFailed is called when the attributes of file cannot be read,
	// when a directory cannot be opened, or when a loop is detected.
	VisitFileFailed(file Path, err error) (FileVisitResult, error)

	// PostVisitDirectory is called after the entries of dir. err is non-nil
	// when the listing stopped early.
	PostVisitDirectory(dir Path, err error) (FileVisitResult, error)
}

// Visitor is a FileVisitor built from optional functions. Missing functions
// continue the walk, except that failures reaching VisitFailed or PostVisit
// are returned.
type Visitor struct {
	PreVisit    func(dir Path, info fs.FileInfo) (FileVisitResult, error)
	Visit       func(file Path, info fs.FileInfo) (FileVisitResult, error)
	VisitFailed func(file Path, err error) (FileVisitResult, error)
	PostVisit   func(dir Path, err error) (FileVisitResult, error)
}

var _ FileVisitor = Visitor{}

// PreVisitDirectory implements FileVisitor.
func (v Visitor) PreVisitDirectory(dir Path, info fs.FileInfo) (FileVisitResult, error) {
	if v.PreVisit == nil {
		return Continue, nil
	}
	return v.PreVisit(dir, info)
}

// VisitFile implements FileVisitor.
func (v Visitor) VisitFile(file Path, info fs.FileInfo) (FileVisitResult, error) {
	if v.Visit == nil {
		return Continue, nil
	}
	return v.Visit(file, info)
}

// VisitFileFailed implements FileVisitor.
func (v Visitor) VisitFileFailed(file Path, err error) (FileVisitResult, error) {
	if v.VisitFailed == nil {
		return Continue, err
	}
	return v.VisitFailed(file, err)
}

// PostVisitDirectory implements FileVisitor.
func (v Visitor) PostVisitDirectory(dir Path, err error) (FileVisitResult, error) {
	if v.PostVisit == nil {
		return Continue, err
	}
	return v.PostVisit(dir, err)
}

// NaiveVisitor is a FileVisitor whose functions see only the Path.
//
// Failures are never handed to the functions: a failed visit and a directory
// whose listing stopped early both end the walk with the error, before
// PostVisit runs.
type NaiveVisitor struct {
	PreVisit  func(dir Path) (FileVisitResult, error)
	Visit     func(file Path) (FileVisitResult, error)
	PostVisit func(dir Path) (FileVisitResult, error)
}

var _ FileVisitor = NaiveVisitor{}

// PreVisitDirectory implements FileVisitor.
func (v NaiveVisitor) PreVisitDirectory(dir Path, _ fs.FileInfo) (FileVisitResult, error) {
	if v.PreVisit == nil {
		return Continue, nil
	}
	return v.PreVisit(dir)
}

// VisitFile implements FileVisitor.
func (v NaiveVisitor) VisitFile(file Path, _ fs.FileInfo) (FileVisitResult, error) {
	if v.Visit == nil {
		return Continue, nil
	}
	return v.Visit(file)
}

// VisitFileFailed implements FileVisitor. It always returns err.
func (NaiveVisitor) VisitFileFailed(_ Path, err error) (FileVisitResult, error) {
	return Continue, err
}

// PostVisitDirectory implements FileVisitor.
func (v NaiveVisitor) PostVisitDirectory(dir Path, err error) (FileVisitResult, error) {
	if err != nil {
		return Continue, err
	}
	if v.PostVisit == nil {
		return Continue, nil
	}
	return v.PostVisit(dir)
}
