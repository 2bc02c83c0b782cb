package errors

// ErrorCode identifies a failure class in API responses. Codes are grouped
// by the layer that raises them: request validation, document handling, the
// analysis pipeline, and the system itself.
type ErrorCode string

// Request validation (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
)

// Document intake and extraction (DOCUMENT_*)
const (
	DocumentMissing        ErrorCode = "DOCUMENT_001"
	DocumentTooLarge       ErrorCode = "DOCUMENT_002"
	DocumentUnsupported    ErrorCode = "DOCUMENT_003"
	DocumentUnreadable     ErrorCode = "DOCUMENT_004"
	DocumentNoExtractor    ErrorCode = "DOCUMENT_005"
	DocumentEmptyStatement ErrorCode = "DOCUMENT_006"
)

// Analysis pipeline (ANALYSIS_*)
const (
	AnalysisNotFound    ErrorCode = "ANALYSIS_001"
	AnalysisInvalidID   ErrorCode = "ANALYSIS_002"
	AnalysisFailed      ErrorCode = "ANALYSIS_003"
	AnalysisAgentFailed ErrorCode = "ANALYSIS_004"
)

// System (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

// errorMessages holds the client-safe default message for each code
var errorMessages = map[ErrorCode]string{
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format or range",

	DocumentMissing:        "No document or statement text provided",
	DocumentTooLarge:       "Uploaded document exceeds the size limit",
	DocumentUnsupported:    "Unsupported document type",
	DocumentUnreadable:     "Document could not be read",
	DocumentNoExtractor:    "No extraction method available for this document",
	DocumentEmptyStatement: "Statement text is empty",

	AnalysisNotFound:    "Analysis not found",
	AnalysisInvalidID:   "Invalid analysis ID format",
	AnalysisFailed:      "Statement analysis failed",
	AnalysisAgentFailed: "Reasoning agents could not complete the analysis",

	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a code, or a generic
// message for codes outside the registry
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode reports whether the code is registered
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
