package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category c with the category's default severity
// and retry strategy.
func NewError(c ErrorCategory, message string) *ErrorBuilder {
	t := traitsOf(c)
	return &ErrorBuilder{err: ClassifiedError{category: c, severity: t.severity, retry: t.retry, message: message}}
}

// WrapError is NewError with cause set.
func WrapError(cause error, c ErrorCategory, message string) *ErrorBuilder {
	return NewError(c, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	if b.err.context == nil {
		b.err.context = make(map[string]any)
	}
	b.err.context[key] = value
	return b
}

func (b *ErrorBuilder) WithSeverity(s ErrorSeverity) *ErrorBuilder {
	b.err.severity = s
	return b
}

func (b *ErrorBuilder) WithRetry(r RetryStrategy) *ErrorBuilder {
	b.err.retry = r
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder     { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }
func (b *ErrorBuilder) Immediate() *ErrorBuilder { return b.WithRetry(RetryImmediate) }

// Build returns the error. The builder may keep being used; later calls do not
// affect errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.context = b.err.Context()
	return &e
}

// Category constructors.
func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func NotFoundError(message string) *ErrorBuilder   { return NewError(CategoryNotFound, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func FormatError(message string) *ErrorBuilder     { return NewError(CategoryFormat, message) }
func CrawlError(message string) *ErrorBuilder      { return NewError(CategoryCrawl, message) }
func CacheError(message string) *ErrorBuilder      { return NewError(CategoryCache, message) }
func NetworkError(message string) *ErrorBuilder    { return NewError(CategoryNetwork, message) }
func StoreError(message string) *ErrorBuilder      { return NewError(CategoryStore, message) }
func RuntimeError(message string) *ErrorBuilder    { return NewError(CategoryRuntime, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }
