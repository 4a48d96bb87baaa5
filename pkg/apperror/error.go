package apperror

// Kind classifies an AppError into the categories the worker acts on:
// aborting without writes, marking entities FAILED, degrading to defaults,
// or treating the operation as a benign replay.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindExternal  Kind = "external"
	KindMalformed Kind = "malformed"
	KindDuplicate Kind = "duplicate"
	KindInternal  Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

// External wraps a failed call to an outside capability (LLM, extraction).
func External(message string, err error) *AppError {
	return New(KindExternal, message, err)
}

// Malformed marks a capability response that did not match the expected
// structured contract.
func Malformed(message string, err error) *AppError {
	return New(KindMalformed, message, err)
}

// Duplicate marks an idempotent replay. Callers treat it as success.
func Duplicate(message string) *AppError {
	return New(KindDuplicate, message, nil)
}

func Internal(err error) *AppError {
	return New(KindInternal, "internal error", err)
}

// IsKind reports whether err (or anything it wraps) is an AppError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
