package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/fspath/core"
)

const (
	markerContentType = "application/x-directory"
	objectContentType = "application/octet-stream"

	// streamPartSize bounds memory held by uploads of unknown length.
	streamPartSize = 16 * 1024 * 1024
)

type entryKind int

const (
	kindMissing entryKind = iota
	kindFile
	kindDir
)

// ObjectFS is a host over one bucket of an S3-compatible store.
type ObjectFS struct {
	client             *minio.Client
	bucket             string
	prefix             string
	multipartThreshold int64
	renameConcurrency  int
}

// New creates an ObjectFS. It does not contact the server.
func New(cfg Config) (*ObjectFS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
	}

	threshold := cfg.MultipartThreshold
	if threshold == 0 {
		threshold = defaultMultipartThreshold
	}
	concurrency := cfg.MaxRenameConcurrency
	if concurrency == 0 {
		concurrency = defaultRenameConcurrency
	}

	return &ObjectFS{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             normalizePrefix(cfg.Prefix),
		multipartThreshold: threshold,
		renameConcurrency:  concurrency,
	}, nil
}

// Client returns the underlying client.
func (o *ObjectFS) Client() *minio.Client {
	return o.client
}

// Bucket returns the bucket name.
func (o *ObjectFS) Bucket() string {
	return o.bucket
}

// Type returns FSTypeObject.
func (o *ObjectFS) Type() core.FSType {
	return core.FSTypeObject
}

func normalizePrefix(prefix string) string {
	return strings.Trim(path.Clean("/"+prefix), "/")
}

func clean(name string) string {
	return path.Clean("/" + name)
}

// objectKey maps an absolute name to its object key.
func (o *ObjectFS) objectKey(name string) string {
	rel := strings.TrimPrefix(clean(name), "/")
	switch {
	case o.prefix == "":
		return rel
	case rel == "":
		return o.prefix
	default:
		return o.prefix + "/" + rel
	}
}

// dirPrefix returns the key prefix shared by everything inside the
// directory name. It is also the key of the directory marker.
func (o *ObjectFS) dirPrefix(name string) string {
	key := o.objectKey(name)
	if key == "" {
		return ""
	}
	return key + "/"
}

// lookup reports whether name is an object, a directory or missing.
func (o *ObjectFS) lookup(ctx context.Context, name string) (entryKind, minio.ObjectInfo, error) {
	if clean(name) == "/" {
		return kindDir, minio.ObjectInfo{}, nil
	}
	info, err := o.client.StatObject(ctx, o.bucket, o.objectKey(name), minio.StatObjectOptions{})
	if err == nil {
		return kindFile, info, nil
	}
	if err = translate(err); !errors.Is(err, fs.ErrNotExist) {
		return kindMissing, info, err
	}
	found, err := o.probe(ctx, o.dirPrefix(name), "")
	if err != nil {
		return kindMissing, info, err
	}
	if found {
		return kindDir, info, nil
	}
	return kindMissing, info, nil
}

// probe reports whether any key other than skip starts with prefix.
func (o *ObjectFS) probe(ctx context.Context, prefix, skip string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   2,
	}) {
		if object.Err != nil {
			return false, translate(object.Err)
		}
		if object.Key != skip {
			return true, nil
		}
	}
	return false, nil
}

// checkParent verifies the parent of name is an existing directory.
func (o *ObjectFS) checkParent(ctx context.Context, op, name string) error {
	kind, _, err := o.lookup(ctx, path.Dir(clean(name)))
	switch {
	case err != nil:
		return pathError(op, name, err)
	case kind == kindMissing:
		return errno(op, name, syscall.ENOENT)
	case kind == kindFile:
		return errno(op, name, syscall.ENOTDIR)
	}
	return nil
}

func (o *ObjectFS) putMarker(ctx context.Context, name string) error {
	_, err := o.client.PutObject(ctx, o.bucket, o.dirPrefix(name), bytes.NewReader(nil), 0,
		minio.PutObjectOptions{ContentType: markerContentType})
	return translate(err)
}

// Open opens the named object for reading.
func (o *ObjectFS) Open(name string) (fs.File, error) {
	return o.OpenFile(name, os.O_RDONLY, 0)
}

// Stat returns metadata for an object or directory.
func (o *ObjectFS) Stat(name string) (fs.FileInfo, error) {
	kind, info, err := o.lookup(context.Background(), name)
	switch {
	case err != nil:
		return nil, pathError("stat", name, err)
	case kind == kindMissing:
		return nil, errno("stat", name, syscall.ENOENT)
	case kind == kindDir:
		return newDirInfo(path.Base(clean(name))), nil
	}
	return newFileInfo(path.Base(clean(name)), info.Size, info.LastModified), nil
}

// ReadDir lists a directory sorted by name. Directory markers are hidden.
func (o *ObjectFS) ReadDir(name string) ([]fs.DirEntry, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kind, _, err := o.lookup(ctx, name)
	switch {
	case err != nil:
		return nil, pathError("readdir", name, err)
	case kind == kindMissing:
		return nil, errno("readdir", name, syscall.ENOENT)
	case kind == kindFile:
		return nil, errno("readdir", name, syscall.ENOTDIR)
	}

	prefix := o.dirPrefix(name)
	seen := make(map[string]bool)
	var entries []fs.DirEntry
	for object := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return sortEntries(entries), pathError("readdir", name, translate(object.Err))
		}
		rel := strings.TrimPrefix(object.Key, prefix)
		isDir := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		if isDir {
			entries = append(entries, dirEntry{info: newDirInfo(rel)})
		} else {
			entries = append(entries, dirEntry{info: newFileInfo(rel, object.Size, object.LastModified)})
		}
	}
	return sortEntries(entries), nil
}

func sortEntries(entries []fs.DirEntry) []fs.DirEntry {
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries
}

// ReadFile reads a whole object.
func (o *ObjectFS) ReadFile(name string) ([]byte, error) {
	f, err := o.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := f.(*reader)
	buf := make([]byte, r.info.Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, pathError("readfile", name, err)
	}
	return buf, nil
}

// Exists reports whether the named object or directory exists.
func (o *ObjectFS) Exists(name string) (bool, error) {
	_, err := o.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named object.
func (o *ObjectFS) Create(name string) (core.File, error) {
	return o.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
}

// OpenFile opens the named object with os-style flags. Handles are either
// read-only or write-only; O_RDWR is unsupported. Writes are uploaded on
// Sync and Close. Opening an existing object for writing without O_TRUNC
// downloads it first so writes overwrite it in place, or extend it with
// O_APPEND.
func (o *ObjectFS) OpenFile(name string, flag int, _ fs.FileMode) (core.File, error) {
	if flag&os.O_RDWR != 0 {
		return nil, pathError("open", name, fmt.Errorf("%w: read-write handles", core.ErrUnsupported))
	}
	ctx := context.Background()
	kind, info, err := o.lookup(ctx, name)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	if flag&os.O_WRONLY == 0 {
		switch kind {
		case kindMissing:
			return nil, errno("open", name, syscall.ENOENT)
		case kindDir:
			return nil, errno("open", name, syscall.EISDIR)
		}
		r, err := o.openReader(ctx, name, info)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	switch kind {
	case kindDir:
		return nil, errno("open", name, syscall.EISDIR)
	case kindFile:
		if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
			return nil, errno("open", name, syscall.EEXIST)
		}
	case kindMissing:
		if flag&os.O_CREATE == 0 {
			return nil, errno("open", name, syscall.ENOENT)
		}
		if err := o.checkParent(ctx, "open", name); err != nil {
			return nil, err
		}
	}

	w := newWriter(o, name)
	if kind == kindFile && flag&os.O_TRUNC == 0 {
		data, err := o.download(ctx, info)
		if err != nil {
			return nil, pathError("open", name, err)
		}
		w.buf = data
		if flag&os.O_APPEND != 0 {
			w.off = len(data)
		}
	}
	return w, nil
}

func (o *ObjectFS) download(ctx context.Context, info minio.ObjectInfo) ([]byte, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, info.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = obj.Close() }()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, translate(err)
	}
	return buf, nil
}

// WriteFile writes data to the named object, creating or truncating it.
func (o *ObjectFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := o.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return pathError("writefile", name, err)
	}
	return f.Close()
}

// WriteFileAtomic uploads r as the named object in a single request. S3
// replaces objects atomically, so no staging object is needed.
func (o *ObjectFS) WriteFileAtomic(name string, r io.Reader) error {
	ctx := context.Background()
	kind, _, err := o.lookup(ctx, name)
	switch {
	case err != nil:
		return pathError("write", name, err)
	case kind == kindDir:
		return errno("write", name, syscall.EISDIR)
	case kind == kindMissing:
		if err := o.checkParent(ctx, "write", name); err != nil {
			return err
		}
	}
	_, err = o.client.PutObject(ctx, o.bucket, o.objectKey(name), r, -1,
		minio.PutObjectOptions{ContentType: objectContentType, PartSize: streamPartSize})
	return pathError("write", name, translate(err))
}

// Mkdir creates a directory marker.
func (o *ObjectFS) Mkdir(name string, _ fs.FileMode) error {
	ctx := context.Background()
	kind, _, err := o.lookup(ctx, name)
	switch {
	case err != nil:
		return pathError("mkdir", name, err)
	case kind != kindMissing:
		return errno("mkdir", name, syscall.EEXIST)
	}
	if err := o.checkParent(ctx, "mkdir", name); err != nil {
		return err
	}
	return pathError("mkdir", name, o.putMarker(ctx, name))
}

// MkdirAll creates markers for every missing component of name.
func (o *ObjectFS) MkdirAll(name string, _ fs.FileMode) error {
	ctx := context.Background()
	cur := "/"
	for _, part := range strings.Split(strings.TrimPrefix(clean(name), "/"), "/") {
		if part == "" {
			continue
		}
		cur = path.Join(cur, part)
		kind, _, err := o.lookup(ctx, cur)
		switch {
		case err != nil:
			return pathError("mkdir", name, err)
		case kind == kindFile:
			return errno("mkdir", name, syscall.ENOTDIR)
		case kind == kindMissing:
			if err := o.putMarker(ctx, cur); err != nil {
				return pathError("mkdir", name, err)
			}
		}
	}
	return nil
}

// Remove deletes an object or an empty directory's marker.
func (o *ObjectFS) Remove(name string) error {
	ctx := context.Background()
	if clean(name) == "/" {
		return errno("remove", name, syscall.EBUSY)
	}
	kind, _, err := o.lookup(ctx, name)
	switch {
	case err != nil:
		return pathError("remove", name, err)
	case kind == kindMissing:
		return errno("remove", name, syscall.ENOENT)
	case kind == kindFile:
		err := o.client.RemoveObject(ctx, o.bucket, o.objectKey(name), minio.RemoveObjectOptions{})
		return pathError("remove", name, translate(err))
	}

	prefix := o.dirPrefix(name)
	full, err := o.probe(ctx, prefix, prefix)
	switch {
	case err != nil:
		return pathError("remove", name, err)
	case full:
		return errno("remove", name, syscall.ENOTEMPTY)
	}
	err = o.client.RemoveObject(ctx, o.bucket, prefix, minio.RemoveObjectOptions{})
	return pathError("remove", name, translate(err))
}

// Rename moves an object, or every key below a directory, to newpath.
// Directory renames copy concurrently and then delete the sources; a
// failure part way leaves both copies in place.
func (o *ObjectFS) Rename(oldpath, newpath string) error {
	ctx := context.Background()
	from, to := clean(oldpath), clean(newpath)

	kind, _, err := o.lookup(ctx, from)
	switch {
	case err != nil:
		return pathError("rename", oldpath, err)
	case kind == kindMissing:
		return errno("rename", oldpath, syscall.ENOENT)
	case from == to:
		return nil
	case from == "/" || to == "/":
		return errno("rename", oldpath, syscall.EBUSY)
	}
	if err := o.checkParent(ctx, "rename", newpath); err != nil {
		return err
	}
	dstKind, _, err := o.lookup(ctx, to)
	if err != nil {
		return pathError("rename", newpath, err)
	}

	if kind == kindFile {
		if dstKind == kindDir {
			return errno("rename", newpath, syscall.EISDIR)
		}
		return o.renameObject(ctx, o.objectKey(from), o.objectKey(to), oldpath)
	}

	if strings.HasPrefix(to, from+"/") {
		return errno("rename", oldpath, syscall.EINVAL)
	}
	switch dstKind {
	case kindFile:
		return errno("rename", newpath, syscall.ENOTDIR)
	case kindDir:
		dst := o.dirPrefix(to)
		full, err := o.probe(ctx, dst, dst)
		if err != nil {
			return pathError("rename", newpath, err)
		}
		if full {
			return errno("rename", newpath, syscall.ENOTEMPTY)
		}
	}

	copied, err := o.parallelCopy(ctx, o.dirPrefix(from), o.dirPrefix(to))
	if err != nil {
		return pathError("rename", oldpath, translate(err))
	}
	return pathError("rename", oldpath, o.removeKeys(ctx, copied))
}

func (o *ObjectFS) renameObject(ctx context.Context, oldKey, newKey, name string) error {
	src := minio.CopySrcOptions{Bucket: o.bucket, Object: oldKey}
	dst := minio.CopyDestOptions{Bucket: o.bucket, Object: newKey}
	if _, err := o.client.CopyObject(ctx, dst, src); err != nil {
		return pathError("rename", name, translate(err))
	}
	err := o.client.RemoveObject(ctx, o.bucket, oldKey, minio.RemoveObjectOptions{})
	return pathError("rename", name, translate(err))
}

// parallelCopy copies every key below oldPrefix to newPrefix with at most
// renameConcurrency copies in flight. It returns the keys copied.
func (o *ObjectFS) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.renameConcurrency)

	var mu sync.Mutex
	var copied []string

	var listErr error
	for object := range o.client.ListObjects(egCtx, o.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			listErr = object.Err
			break
		}
		key := object.Key
		eg.Go(func() error {
			newKey := newPrefix + strings.TrimPrefix(key, oldPrefix)
			src := minio.CopySrcOptions{Bucket: o.bucket, Object: key}
			dst := minio.CopyDestOptions{Bucket: o.bucket, Object: newKey}
			if _, err := o.client.CopyObject(egCtx, dst, src); err != nil {
				return fmt.Errorf("copy object %s to %s: %w", key, newKey, err)
			}
			mu.Lock()
			copied = append(copied, key)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, err
	}
	return copied, listErr
}

func (o *ObjectFS) removeKeys(ctx context.Context, keys []string) error {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var errs []error
	for res := range o.client.RemoveObjects(ctx, o.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil {
			errs = append(errs, translate(res.Err))
		}
	}
	return errors.Join(errs...)
}

// Stores returns the bucket as the only store.
func (o *ObjectFS) Stores() ([]core.Store, error) {
	return []core.Store{o.store()}, nil
}

// StoreOf returns the bucket store if name exists.
func (o *ObjectFS) StoreOf(name string) (core.Store, error) {
	if _, err := o.Stat(name); err != nil {
		return core.Store{}, err
	}
	return o.store(), nil
}

func (o *ObjectFS) store() core.Store {
	return core.Store{Name: o.bucket, Type: "s3", Mount: "/"}
}

var (
	_ core.FS            = (*ObjectFS)(nil)
	_ core.StoreFS       = (*ObjectFS)(nil)
	_ core.AtomicWriteFS = (*ObjectFS)(nil)
)
