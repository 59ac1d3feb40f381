package errors

// ErrorClassification indicates whether an error may succeed when retried.
// The classification is informational; nothing in this module retries.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry could succeed.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps codes that are not permanent.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeBusy:        ClassificationRetryable,
	CodeInterrupted: ClassificationRetryable,
}

// getDefaultClassification returns the default classification for an error code.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
