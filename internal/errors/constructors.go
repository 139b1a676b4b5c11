package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *RenderError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *RenderError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *RenderError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Render pipeline errors

func RecordError(path string, cause error) *RenderError {
	return Wrap(cause, CategoryValidation, SeverityError, "record rejected").
		WithContext("record", path)
}

func ExtractError(section string, cause error) *RenderError {
	return Wrap(cause, CategoryExtract, SeverityError, "section extraction failed").
		WithContext("section", section)
}

func LayoutError(template string, cause error) *RenderError {
	return Wrap(cause, CategoryLayout, SeverityFatal, "document layout failed").
		WithContext("template", template)
}

func ImageError(path string, cause error) *RenderError {
	return Wrap(cause, CategoryImage, SeverityWarning, "image unusable").
		WithContext("image", path)
}

func OutputError(path string, cause error) *RenderError {
	return WrapRetryable(cause, CategoryOutput, SeverityError, "document write failed").
		WithContext("output", path)
}

// Ledger errors

func LedgerError(operation string, cause error) *RenderError {
	return WrapRetryable(cause, CategoryLedger, SeverityError, "ledger operation failed").
		WithContext("operation", operation)
}

func DiscoveryError(cause error) *RenderError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "record discovery failed")
}

// Internal errors

func InternalError(message string, cause error) *RenderError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
