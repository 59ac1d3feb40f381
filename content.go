package fspath

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

// ReadAllBytes returns the content of p.
func ReadAllBytes(p any) ([]byte, error) {
	file, err := openPath("read", p)
	if err != nil {
		return nil, err
	}
	data, err := file.fsys.host.ReadFile(file.hostName())
	if err != nil {
		return nil, hostError("read", file, err)
	}
	return data, nil
}

// ReadAllLines returns the lines of p decoded with cs, or UTF-8 when cs is
// omitted. Lines end at "\n", "\r" or "\r\n"; a final terminator does not
// start a new line. Malformed input fails with CodeInvalidInput.
func ReadAllLines(p any, cs ...Charset) ([]string, error) {
	charset := UTF8
	if len(cs) > 0 {
		charset = cs[0]
	}
	data, err := ReadAllBytes(p)
	if err != nil {
		return nil, err
	}
	text, err := charset.decode(data)
	if err != nil {
		return nil, fserrors.WithContext(err, "path", pathString(p))
	}
	return splitLines(text), nil
}

func splitLines(text string) []string {
	lines := []string{}
	for text != "" {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

func pathString(p any) string {
	if path, err := ToPath(p); err == nil {
		return path.String()
	}
	return ""
}

// Write writes content to p and returns p. Content is either []byte, written
// as is, or []string, where every line is encoded with the Charset option
// (UTF-8 by default) and followed by "\n".
//
// Without open options the file is created if needed and truncated. Write
// access is always requested; OpenRead is rejected. With OpenReplaceAtomically
// the content is staged next to p and renamed into place.
func Write(p any, content any, opts ...WriteOption) (Path, error) {
	file, err := writablePath("write", p)
	if err != nil {
		return Path{}, err
	}
	flags, err := foldWrite(opts)
	if err != nil {
		return Path{}, err
	}
	if flags.read {
		return Path{}, invalidOptions("READ is not allowed when writing")
	}
	if flags.empty {
		flags.create, flags.truncate = true, true
	}
	flags.write = true

	data, err := encodeContent(content, flags.charset)
	if err != nil {
		return Path{}, err
	}
	if err := file.fsys.refuseLink("write", file, flags); err != nil {
		return Path{}, err
	}
	if flags.replaceAtomically {
		return file, file.fsys.replaceAtomically(file, data)
	}

	f, err := file.fsys.host.OpenFile(file.hostName(), flags.osFlags(), defaultFileMode)
	if err != nil {
		return Path{}, hostError("write", file, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Path{}, hostError("write", file, err)
	}
	if flags.sync || flags.dsync {
		if s, ok := f.(core.Syncer); ok {
			if err := s.Sync(); err != nil {
				_ = f.Close()
				return Path{}, hostError("write", file, err)
			}
		}
	}
	if err := f.Close(); err != nil {
		return Path{}, hostError("write", file, err)
	}
	if flags.deleteOnClose {
		if err := file.fsys.remove(file); err != nil {
			return Path{}, err
		}
	}
	return file, nil
}

func encodeContent(content any, cs *Charset) ([]byte, error) {
	switch c := content.(type) {
	case []byte:
		return c, nil
	case []string:
		charset := UTF8
		if cs != nil {
			charset = *cs
		}
		var buf bytes.Buffer
		for _, line := range c {
			encoded, err := charset.encode(line)
			if err != nil {
				return nil, err
			}
			buf.Write(encoded)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	default:
		return nil, unsupportedInput(content, "content must be []byte or []string")
	}
}

// replaceAtomically writes data through the host's atomic writer, or stages
// it in a temporary sibling and renames it over p.
func (fsys *FileSystem) replaceAtomically(p Path, data []byte) error {
	name := p.hostName()
	if afs, ok := fsys.host.(core.AtomicWriteFS); ok {
		return hostError("write", p, afs.WriteFileAtomic(name, bytes.NewReader(data)))
	}
	tfs, ok := fsys.host.(core.TempFS)
	if !ok {
		return unsupported("write", p)
	}
	f, err := tfs.TempFile(path.Dir(name), "."+path.Base(name)+".*")
	if err != nil {
		return hostError("write", p, err)
	}
	staged := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.host.Remove(staged)
		return hostError("write", p, err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.host.Remove(staged)
		return hostError("write", p, err)
	}
	if err := fsys.host.Rename(staged, name); err != nil {
		_ = fsys.host.Remove(staged)
		return hostError("write", p, err)
	}
	return nil
}

// refuseLink fails with CodeLoop when NoFollowLinks is set and p is a link.
func (fsys *FileSystem) refuseLink(op string, p Path, flags openFlags) error {
	if !flags.noFollowLinks {
		return nil
	}
	info, err := fsys.lstat(p.hostName())
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	return fserrors.WithContextMap(
		fserrors.New(fserrors.CodeLoop, "refusing to follow symbolic link"),
		map[string]any{"op": op, "path": p.String()})
}

// Open opens p with the given options, OpenRead when none are given.
// The returned file also implements io.Seeker when the host file does.
func Open(p any, opts ...OpenOption) (core.File, error) {
	file, err := openPath("open", p)
	if err != nil {
		return nil, err
	}
	flags, err := foldOpen(opts)
	if err != nil {
		return nil, err
	}
	if flags.empty {
		flags.read = true
	}
	writing := flags.write || flags.append
	if writing || flags.deleteOnClose {
		if err := file.fsys.checkWritable("open", file); err != nil {
			return nil, err
		}
	}
	if err := file.fsys.refuseLink("open", file, flags); err != nil {
		return nil, err
	}
	if flags.replaceAtomically {
		return nil, unsupportedOption(OpenReplaceAtomically)
	}

	f, err := file.fsys.host.OpenFile(file.hostName(), flags.osFlags(), defaultFileMode)
	if err != nil {
		return nil, hostError("open", file, err)
	}
	if flags.deleteOnClose {
		return &deletingFile{File: f, path: file}, nil
	}
	return f, nil
}

// deletingFile removes its path after closing.
type deletingFile struct {
	core.File
	path Path
}

func (f *deletingFile) Close() error {
	closeErr := f.File.Close()
	if err := f.path.fsys.remove(f.path); err != nil && !fserrors.HasCode(err, fserrors.CodeNotFound) {
		return errors.Join(closeErr, err)
	}
	return closeErr
}

func (f *deletingFile) Seek(offset int64, whence int) (int64, error) {
	s, ok := f.File.(io.Seeker)
	if !ok {
		return 0, unsupported("seek", f.path)
	}
	return s.Seek(offset, whence)
}

func (f *deletingFile) Sync() error {
	if s, ok := f.File.(core.Syncer); ok {
		return s.Sync()
	}
	return nil
}
