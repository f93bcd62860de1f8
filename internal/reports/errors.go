package reports

import (
	"lexmart/internal/common"
)

// Stable error codes surfaced to callers. The HTTP layer maps these to
// status codes; underlying SQL and driver errors stay server-side.
const (
	CodeUnknownDataSource = "UNKNOWN_DATA_SOURCE"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeQueryExecution    = "QUERY_EXECUTION_FAILED"
	CodeQueryTimeout      = "QUERY_TIMEOUT"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeTemplateNotFound  = "TEMPLATE_NOT_FOUND"
)

func errUnknownDataSource(name string) *common.DomainError {
	return common.NewDomainError(CodeUnknownDataSource, "unknown data source: "+name)
}

func errInvalidFilter(message string) *common.DomainError {
	return common.NewDomainError(CodeInvalidFilter, message)
}

func errAccessDenied(message string) *common.DomainError {
	return common.NewDomainError(CodeAccessDenied, message)
}

func errUnsupportedFormat(format string) *common.DomainError {
	return common.NewDomainError(CodeUnsupportedFormat, "unsupported export format: "+format)
}
