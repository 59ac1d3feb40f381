package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

// writer buffers writes and uploads them as one object.
//
// A handle that only ever appends switches to a streaming multipart upload
// once the buffer would exceed the multipart threshold. Handles that write
// over existing content stay buffered.
type writer struct {
	fs   *ObjectFS
	name string
	key  string

	buf []byte
	off int

	pipe    *io.PipeWriter
	done    chan error
	written int64
	closed  bool
}

func newWriter(o *ObjectFS, name string) *writer {
	return &writer{fs: o, name: name, key: o.objectKey(name)}
}

// Name returns the name passed to OpenFile.
func (w *writer) Name() string {
	return w.name
}

// Read fails; writers are write-only.
func (w *writer) Read([]byte) (int, error) {
	return 0, pathError("read", w.name, fs.ErrInvalid)
}

// Write writes p at the current offset.
func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, pathError("write", w.name, fs.ErrClosed)
	}
	if w.pipe != nil {
		n, err := w.pipe.Write(p)
		w.written += int64(n)
		return n, pathError("write", w.name, err)
	}
	if w.off == len(w.buf) && int64(len(w.buf)+len(p)) > w.fs.multipartThreshold && w.fs.client != nil {
		return w.startStreaming(p)
	}
	w.writeAt(p)
	return len(p), nil
}

// writeAt overwrites the buffer from the current offset, growing it as
// needed.
func (w *writer) writeAt(p []byte) {
	end := w.off + len(p)
	if end > len(w.buf) {
		w.buf = append(w.buf[:w.off], p...)
	} else {
		copy(w.buf[w.off:], p)
	}
	w.off = end
}

//nolint:contextcheck // io.Writer cannot carry a context
func (w *writer) startStreaming(p []byte) (int, error) {
	pr, pw := io.Pipe()
	w.pipe = pw
	w.done = make(chan error, 1)
	go func() {
		_, err := w.fs.client.PutObject(context.Background(), w.fs.bucket, w.key, pr, -1,
			minio.PutObjectOptions{ContentType: objectContentType, PartSize: streamPartSize})
		_ = pr.CloseWithError(err)
		w.done <- translate(err)
		close(w.done)
	}()

	if len(w.buf) > 0 {
		if _, err := pw.Write(w.buf); err != nil {
			return 0, pathError("write", w.name, err)
		}
		w.written = int64(len(w.buf))
	}
	w.buf, w.off = nil, 0

	n, err := pw.Write(p)
	w.written += int64(n)
	return n, pathError("write", w.name, err)
}

// Sync uploads the buffered content. Streaming handles upload as they go.
func (w *writer) Sync() error {
	if w.closed {
		return pathError("sync", w.name, fs.ErrClosed)
	}
	if w.pipe != nil {
		return nil
	}
	return pathError("sync", w.name, w.upload(context.Background()))
}

func (w *writer) upload(ctx context.Context) error {
	_, err := w.fs.client.PutObject(ctx, w.fs.bucket, w.key, bytes.NewReader(w.buf), int64(len(w.buf)),
		minio.PutObjectOptions{ContentType: objectContentType})
	return translate(err)
}

// Stat describes the content written so far.
func (w *writer) Stat() (fs.FileInfo, error) {
	size := int64(len(w.buf))
	if w.pipe != nil {
		size = w.written
	}
	return newFileInfo(path.Base(clean(w.name)), size, time.Now()), nil
}

// Close uploads the content. Closing twice is a no-op.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.pipe != nil {
		_ = w.pipe.Close()
		return pathError("close", w.name, <-w.done)
	}
	return pathError("close", w.name, w.upload(context.Background()))
}

// reader streams an object, using range requests for Seek and ReadAt.
type reader struct {
	name   string
	obj    *minio.Object
	info   minio.ObjectInfo
	closed bool
}

func (o *ObjectFS) openReader(ctx context.Context, name string, info minio.ObjectInfo) (*reader, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, info.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, pathError("open", name, translate(err))
	}
	return &reader{name: name, obj: obj, info: info}, nil
}

// Name returns the name passed to OpenFile.
func (r *reader) Name() string {
	return r.name
}

func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, pathError("read", r.name, fs.ErrClosed)
	}
	n, err := r.obj.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	return n, pathError("read", r.name, translate(err))
}

func (r *reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, pathError("read", r.name, fs.ErrClosed)
	}
	n, err := r.obj.ReadAt(p, off)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	return n, pathError("read", r.name, translate(err))
}

func (r *reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, pathError("seek", r.name, fs.ErrClosed)
	}
	pos, err := r.obj.Seek(offset, whence)
	return pos, pathError("seek", r.name, err)
}

// Write fails; readers are read-only.
func (r *reader) Write([]byte) (int, error) {
	return 0, pathError("write", r.name, fs.ErrInvalid)
}

func (r *reader) Stat() (fs.FileInfo, error) {
	return newFileInfo(path.Base(clean(r.name)), r.info.Size, r.info.LastModified), nil
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return pathError("close", r.name, r.obj.Close())
}
