package fspath

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// PathMatcher reports whether a Path matches a pattern.
type PathMatcher interface {
	Matches(p Path) bool
}

type globMatcher struct {
	g glob.Glob
}

func (m globMatcher) Matches(p Path) bool { return m.g.Match(p.String()) }

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Matches(p Path) bool { return m.re.MatchString(p.String()) }

// PathMatcher compiles "syntax:pattern" into a matcher over the string form
// of Paths. Syntax "glob" matches with "*" and "?" within one name, "**"
// across names, "[...]" classes and "{a,b}" alternatives. Syntax "regex"
// takes a regular expression that must match the whole path.
//
// A missing syntax or a bad pattern fails with CodeInvalidInput; any other
// syntax fails with CodeUnsupported.
func (fsys *FileSystem) PathMatcher(syntaxAndPattern string) (PathMatcher, error) {
	syntax, pattern, ok := strings.Cut(syntaxAndPattern, ":")
	if !ok {
		return nil, matcherError(fserrors.CodeInvalidInput, syntaxAndPattern, "expected syntax:pattern", nil)
	}
	switch strings.ToLower(syntax) {
	case "glob":
		g, err := glob.Compile(pattern, []rune(fsys.Separator())...)
		if err != nil {
			return nil, matcherError(fserrors.CodeInvalidInput, syntaxAndPattern, "invalid glob", err)
		}
		return globMatcher{g: g}, nil
	case "regex":
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, matcherError(fserrors.CodeInvalidInput, syntaxAndPattern, "invalid regular expression", err)
		}
		return regexMatcher{re: re}, nil
	default:
		return nil, matcherError(fserrors.CodeUnsupported, syntaxAndPattern, "unsupported pattern syntax "+syntax, nil)
	}
}

// NewPathMatcher compiles syntaxAndPattern for the FileSystem coerced from
// fsys, or for the default FileSystem.
//
// Example:
//
//	m, _ := fspath.NewPathMatcher("glob:**/*.go")
//	m.Matches(p)
func NewPathMatcher(syntaxAndPattern string, fsys ...any) (PathMatcher, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.PathMatcher(syntaxAndPattern)
}

func matcherError(code fserrors.ErrorCode, pattern, message string, cause error) error {
	ctx := map[string]any{"pattern": pattern}
	if cause == nil {
		return fserrors.WithContextMap(fserrors.New(code, message), ctx)
	}
	return fserrors.WrapWithContext(cause, code, message, ctx)
}

// ListDirectory returns the entries of dir, resolved against dir, in name
// order. An optional glob filters entries by file name.
//
// Example:
//
//	sources, _ := fspath.ListDirectory("/src", "*.{go,mod}")
func ListDirectory(dir any, pattern ...string) ([]Path, error) {
	p, err := openPath("list", dir)
	if err != nil {
		return nil, err
	}
	var filter glob.Glob
	if len(pattern) > 0 {
		filter, err = glob.Compile(pattern[0], '/')
		if err != nil {
			return nil, matcherError(fserrors.CodeInvalidInput, pattern[0], "invalid glob", err)
		}
	}

	entries, err := p.fsys.host.ReadDir(p.hostName())
	if err != nil {
		return nil, hostError("list", p, err)
	}
	out := make([]Path, 0, len(entries))
	for _, e := range entries {
		if filter != nil && !filter.Match(e.Name()) {
			continue
		}
		out = append(out, p.Resolve(newPath(p.fsys, e.Name())))
	}
	return out, nil
}
