package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("defaults follow the category", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"config", ConfigError("x"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"validation", ValidationError("x"), CategoryValidation, SeverityFatal, RetryUserAction},
			{"not found", NotFoundError("x"), CategoryNotFound, SeverityError, RetryNever},
			{"filesystem", FileSystemError("x"), CategoryFileSystem, SeverityError, RetryBackoff},
			{"format", FormatError("x"), CategoryFormat, SeverityError, RetryNever},
			{"crawl", CrawlError("x"), CategoryCrawl, SeverityError, RetryBackoff},
			{"cache", CacheError("x"), CategoryCache, SeverityError, RetryImmediate},
			{"network", NetworkError("x"), CategoryNetwork, SeverityError, RetryBackoff},
			{"store", StoreError("x"), CategoryStore, SeverityError, RetryBackoff},
			{"runtime", RuntimeError("x"), CategoryRuntime, SeverityFatal, RetryNever},
			{"internal", InternalError("x"), CategoryInternal, SeverityFatal, RetryNever},
			{"unknown", NewError("custom", "x"), "custom", SeverityError, RetryNever},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				assert.Equal(t, tt.category, err.Category())
				assert.Equal(t, tt.severity, err.Severity())
				assert.Equal(t, tt.retry, err.RetryStrategy())
			})
		}
	})

	t.Run("overrides and context", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := FileSystemError("read entry").
			WithCause(cause).
			WithContext("path", "Entries/a.md").
			WithSeverity(SeverityWarning).
			WithRetry(RetryNever).
			Build()

		assert.Equal(t, "filesystem: read entry: permission denied", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, SeverityWarning, err.Severity())
		assert.False(t, err.CanRetry())
		v, ok := err.Value("path")
		require.True(t, ok)
		assert.Equal(t, "Entries/a.md", v)
	})

	t.Run("built errors are independent of the builder", func(t *testing.T) {
		b := NotFoundError("no route").WithContext("path", "/a")
		first := b.Build()
		b.WithContext("path", "/b")
		second := b.Build()

		v, _ := first.Value("path")
		assert.Equal(t, "/a", v)
		v, _ = second.Value("path")
		assert.Equal(t, "/b", v)

		ctx := first.Context()
		ctx["path"] = "mutated"
		v, _ = first.Value("path")
		assert.Equal(t, "/a", v)
	})

	t.Run("wrap", func(t *testing.T) {
		err := WrapError(stderrors.New("bad yaml"), CategoryFormat, "format entry").Build()
		assert.Equal(t, "format: format entry: bad yaml", err.Error())
		assert.Nil(t, err.Context())
	})
}

func TestHelpers(t *testing.T) {
	inner := CrawlError("walk failed").Build()
	wrapped := fmt.Errorf("generation: %w", inner)
	plain := stderrors.New("plain")

	assert.True(t, IsClassified(wrapped))
	assert.False(t, IsClassified(plain))
	assert.True(t, HasCategory(wrapped, CategoryCrawl))
	assert.False(t, HasCategory(wrapped, CategoryConfig))
	assert.False(t, HasCategory(plain, CategoryInternal), "unclassified errors have no category")
	assert.Equal(t, CategoryCrawl, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(plain))
	assert.Equal(t, RetryBackoff, GetRetryStrategy(wrapped))
	assert.Equal(t, RetryNever, GetRetryStrategy(plain))

	outer := WrapError(inner, CategoryCache, "build").Build()
	assert.True(t, HasCategory(outer, CategoryCache), "the outermost classification wins")
	assert.True(t, outer.CanRetry())
}
