package fspath

import (
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// LinkOption controls symbolic link handling.
type LinkOption int

// NoFollowLinks makes an operation act on a terminal link itself.
const NoFollowLinks LinkOption = 1

func (LinkOption) copyOption()  {}
func (LinkOption) openOption()  {}
func (LinkOption) writeOption() {}

func (o LinkOption) String() string {
	if o == NoFollowLinks {
		return "NOFOLLOW_LINKS"
	}
	return "LinkOption(?)"
}

// CopyOption configures Copy and Move.
type CopyOption interface {
	copyOption()
}

// StandardCopyOption is a CopyOption defined by this package.
type StandardCopyOption int

const (
	// ReplaceExisting replaces an existing target.
	ReplaceExisting StandardCopyOption = iota + 1
	// CopyAttributes copies permissions and modification time to the target.
	CopyAttributes
	// AtomicMove moves with a single rename or fails.
	AtomicMove
)

func (StandardCopyOption) copyOption() {}

func (o StandardCopyOption) String() string {
	switch o {
	case ReplaceExisting:
		return "REPLACE_EXISTING"
	case CopyAttributes:
		return "COPY_ATTRIBUTES"
	case AtomicMove:
		return "ATOMIC_MOVE"
	default:
		return "StandardCopyOption(?)"
	}
}

// OpenOption configures Open and Write.
type OpenOption interface {
	openOption()
}

// WriteOption configures Write. Every OpenOption and Charset is a WriteOption.
type WriteOption interface {
	writeOption()
}

// StandardOpenOption is an OpenOption defined by this package.
type StandardOpenOption int

const (
	// OpenRead opens for reading.
	OpenRead StandardOpenOption = iota + 1
	// OpenWrite opens for writing.
	OpenWrite
	// OpenAppend writes at the end of the file.
	OpenAppend
	// OpenTruncateExisting truncates an existing file opened for writing.
	OpenTruncateExisting
	// OpenCreate creates the file if it does not exist.
	OpenCreate
	// OpenCreateNew creates the file and fails if it exists.
	OpenCreateNew
	// OpenDeleteOnClose deletes the file when it is closed.
	OpenDeleteOnClose
	// OpenSparse is accepted and ignored.
	OpenSparse
	// OpenSync writes content and metadata synchronously.
	OpenSync
	// OpenDSync writes content synchronously.
	OpenDSync
	// OpenReplaceAtomically stages written content and renames it into place.
	OpenReplaceAtomically
)

func (StandardOpenOption) openOption()  {}
func (StandardOpenOption) writeOption() {}

var openOptionNames = map[StandardOpenOption]string{
	OpenRead:              "READ",
	OpenWrite:             "WRITE",
	OpenAppend:            "APPEND",
	OpenTruncateExisting:  "TRUNCATE_EXISTING",
	OpenCreate:            "CREATE",
	OpenCreateNew:         "CREATE_NEW",
	OpenDeleteOnClose:     "DELETE_ON_CLOSE",
	OpenSparse:            "SPARSE",
	OpenSync:              "SYNC",
	OpenDSync:             "DSYNC",
	OpenReplaceAtomically: "REPLACE_ATOMICALLY",
}

func (o StandardOpenOption) String() string {
	if name, ok := openOptionNames[o]; ok {
		return name
	}
	return "StandardOpenOption(?)"
}

// copyFlags is the folded form of a CopyOption list.
type copyFlags struct {
	replaceExisting bool
	copyAttributes  bool
	atomicMove      bool
	noFollowLinks   bool
}

func foldCopy(opts []CopyOption) (copyFlags, error) {
	var f copyFlags
	for _, opt := range opts {
		switch opt {
		case ReplaceExisting:
			f.replaceExisting = true
		case CopyAttributes:
			f.copyAttributes = true
		case AtomicMove:
			f.atomicMove = true
		case NoFollowLinks:
			f.noFollowLinks = true
		default:
			return copyFlags{}, unsupportedOption(opt)
		}
	}
	return f, nil
}

// openFlags is the folded form of an OpenOption or WriteOption list.
type openFlags struct {
	read, write, append, truncate bool
	create, createNew             bool
	deleteOnClose, sparse         bool
	sync, dsync                   bool
	replaceAtomically             bool
	noFollowLinks                 bool
	charset                       *Charset
	empty                         bool
}

func foldOpen(opts []OpenOption) (openFlags, error) {
	writeOpts := make([]WriteOption, 0, len(opts))
	for _, opt := range opts {
		w, ok := opt.(WriteOption)
		if !ok {
			return openFlags{}, unsupportedOption(opt)
		}
		writeOpts = append(writeOpts, w)
	}
	return foldWrite(writeOpts)
}

func foldWrite(opts []WriteOption) (openFlags, error) {
	f := openFlags{empty: true}
	for _, opt := range opts {
		switch o := opt.(type) {
		case StandardOpenOption:
			f.empty = false
			if err := f.set(o); err != nil {
				return openFlags{}, err
			}
		case LinkOption:
			if o != NoFollowLinks {
				return openFlags{}, unsupportedOption(o)
			}
			f.noFollowLinks = true
		case Charset:
			f.charset = &o
		default:
			return openFlags{}, unsupportedOption(opt)
		}
	}
	if f.append && f.read {
		return openFlags{}, invalidOptions("READ and APPEND cannot be combined")
	}
	if f.append && f.truncate {
		return openFlags{}, invalidOptions("APPEND and TRUNCATE_EXISTING cannot be combined")
	}
	return f, nil
}

func (f *openFlags) set(o StandardOpenOption) error {
	switch o {
	case OpenRead:
		f.read = true
	case OpenWrite:
		f.write = true
	case OpenAppend:
		f.append = true
	case OpenTruncateExisting:
		f.truncate = true
	case OpenCreate:
		f.create = true
	case OpenCreateNew:
		f.createNew = true
	case OpenDeleteOnClose:
		f.deleteOnClose = true
	case OpenSparse:
		f.sparse = true
	case OpenSync:
		f.sync = true
	case OpenDSync:
		f.dsync = true
	case OpenReplaceAtomically:
		f.replaceAtomically = true
	default:
		return unsupportedOption(o)
	}
	return nil
}

// osFlags converts the folded options to os.OpenFile flags. Create and
// truncate apply only when the file is opened for writing.
func (f openFlags) osFlags() int {
	writing := f.write || f.append
	var flag int
	switch {
	case writing && f.read:
		flag = os.O_RDWR
	case writing:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if writing {
		switch {
		case f.createNew:
			flag |= os.O_CREATE | os.O_EXCL
		case f.create:
			flag |= os.O_CREATE
		}
		if f.truncate {
			flag |= os.O_TRUNC
		}
		if f.append {
			flag |= os.O_APPEND
		}
	}
	if f.sync || f.dsync {
		flag |= os.O_SYNC
	}
	return flag
}

func unsupportedOption(opt any) error {
	return unsupportedInput(opt, "unsupported option")
}

func invalidOptions(message string) error {
	return fserrors.New(fserrors.CodeInvalidInput, message)
}

// Charset is a named text encoding used by ReadAllLines and Write.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the default Charset.
var UTF8 = Charset{name: "UTF-8", enc: unicode.UTF8}

// CharsetFor returns the Charset registered under an IANA name or alias,
// such as "ISO-8859-1" or "latin1".
func CharsetFor(name string) (Charset, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return Charset{}, fserrors.WithContext(
			fserrors.Newf(fserrors.CodeUnsupported, "unsupported charset %q", name),
			"charset", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = strings.ToUpper(name)
	}
	return Charset{name: canonical, enc: enc}, nil
}

func (Charset) writeOption() {}

// Name returns the IANA name of the Charset.
func (c Charset) Name() string {
	return c.name
}

func (c Charset) String() string {
	return c.name
}

func (c Charset) isUTF8() bool {
	return c.enc == nil || c.enc == unicode.UTF8
}

func (c Charset) decode(data []byte) (string, error) {
	if c.isUTF8() {
		if !utf8.Valid(data) {
			return "", fserrors.WithContext(
				fserrors.New(fserrors.CodeInvalidInput, "input is not valid UTF-8"), "charset", c.name)
		}
		return string(data), nil
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fserrors.WrapWithContext(err, fserrors.CodeInvalidInput, "malformed input", map[string]any{"charset": c.name})
	}
	return string(out), nil
}

func (c Charset) encode(s string) ([]byte, error) {
	if c.isUTF8() {
		if !utf8.ValidString(s) {
			return nil, fserrors.WithContext(
				fserrors.New(fserrors.CodeInvalidInput, "text is not valid UTF-8"), "charset", c.name)
		}
		return []byte(s), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fserrors.WrapWithContext(err, fserrors.CodeInvalidInput, "unmappable character", map[string]any{"charset": c.name})
	}
	return out, nil
}

// FileAttribute is an attribute applied when a file or directory is created.
type FileAttribute struct {
	name  string
	value any
}

// PosixPermissionsAttribute sets the permission bits of a new file or
// directory, subject to the process umask.
func PosixPermissionsAttribute(mode fs.FileMode) FileAttribute {
	return FileAttribute{name: "posix:permissions", value: mode.Perm()}
}

// Name returns the attribute name, such as "posix:permissions".
func (a FileAttribute) Name() string {
	return a.name
}

// Value returns the attribute value.
func (a FileAttribute) Value() any {
	return a.value
}

// creationMode folds attrs into the permission bits for a new entry.
func creationMode(def fs.FileMode, attrs []FileAttribute) (fs.FileMode, error) {
	mode := def
	for _, a := range attrs {
		m, ok := a.value.(fs.FileMode)
		if a.name != "posix:permissions" || !ok {
			return 0, fserrors.WithContext(
				fserrors.Newf(fserrors.CodeUnsupported, "attribute %q cannot be set at creation", a.name),
				"attribute", a.name)
		}
		mode = m
	}
	return mode, nil
}
