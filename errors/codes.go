package errors

// ErrorCode represents a specific error condition.
type ErrorCode string

const (
	// Coercion errors.

	// CodeUnsupportedInput indicates a value did not match any registered input shape.
	CodeUnsupportedInput ErrorCode = "UNSUPPORTED_INPUT"

	// CodeUnsupportedEventKind indicates a symbolic watch event tag is not recognized.
	CodeUnsupportedEventKind ErrorCode = "UNSUPPORTED_EVENT_KIND"

	// CodeInvalidInput indicates the input has an accepted shape but malformed content.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeIllegalRelativization indicates two paths share no common root or scope.
	CodeIllegalRelativization ErrorCode = "ILLEGAL_RELATIVIZATION"

	// CodeFileSystemNotFound indicates no mounted file system claims a URI.
	CodeFileSystemNotFound ErrorCode = "FILESYSTEM_NOT_FOUND"

	// Host errors.

	// CodeNotFound indicates a file or directory does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the target of a create, copy or move already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeDirectoryNotEmpty indicates a directory still has entries.
	CodeDirectoryNotEmpty ErrorCode = "DIRECTORY_NOT_EMPTY"

	// CodeNotDirectory indicates a directory was required.
	CodeNotDirectory ErrorCode = "NOT_DIRECTORY"

	// CodeIsDirectory indicates a file operation was attempted on a directory.
	CodeIsDirectory ErrorCode = "IS_DIRECTORY"

	// CodeNotLink indicates a symbolic link was required.
	CodeNotLink ErrorCode = "NOT_LINK"

	// CodeForbidden indicates the host denied access.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeReadOnly indicates a mutation was attempted on a read-only file system.
	CodeReadOnly ErrorCode = "READ_ONLY"

	// CodeCrossDevice indicates an atomic move would cross devices.
	CodeCrossDevice ErrorCode = "CROSS_DEVICE"

	// CodeLoop indicates too many levels of symbolic links or a directory cycle.
	CodeLoop ErrorCode = "LOOP"

	// CodeUnsupported indicates the host does not support the operation.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodeClosed indicates the file system or watch service is closed.
	CodeClosed ErrorCode = "CLOSED"

	// CodeBusy indicates the resource is temporarily busy.
	CodeBusy ErrorCode = "BUSY"

	// CodeInterrupted indicates the host call was interrupted.
	CodeInterrupted ErrorCode = "INTERRUPTED"

	// CodeIO indicates a generic input/output failure.
	CodeIO ErrorCode = "IO_ERROR"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
