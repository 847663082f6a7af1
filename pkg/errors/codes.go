package errors

// ErrorCode is a typed, stable identifier for a failure category.  Codes are
// grouped by module prefix so that metrics and log queries can aggregate by
// subsystem without string matching on messages.
type ErrorCode string

// Common error codes shared by every layer.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeTimeout            ErrorCode = "COMMON_005"
	CodeValidation         ErrorCode = "COMMON_006"
	CodeSerialization      ErrorCode = "COMMON_007"
	CodeDatabaseError      ErrorCode = "COMMON_008"
	CodeCacheError         ErrorCode = "COMMON_009"
	CodeExternalService    ErrorCode = "COMMON_010"
	CodeServiceUnavailable ErrorCode = "COMMON_011"
)

// Matching engine error codes.
const (
	CodeApplicantNotFound   ErrorCode = "MATCH_001"
	CodeProjectNotFound     ErrorCode = "MATCH_002"
	CodeMatchPersistFailed  ErrorCode = "MATCH_003"
	CodeBatchPartialFailure ErrorCode = "MATCH_004"
)

// Geospatial error codes.
const (
	CodeInvalidBounds   ErrorCode = "GEO_001"
	CodeInvalidCellSize ErrorCode = "GEO_002"
	CodeInvalidMode     ErrorCode = "GEO_003"
	CodeInvalidPoint    ErrorCode = "GEO_004"
)

// Embedding provider error codes.
const (
	CodeEmbeddingUnavailable ErrorCode = "EMB_001"
	CodeEmbeddingTimeout     ErrorCode = "EMB_002"
	CodeEmbeddingBadResponse ErrorCode = "EMB_003"
)

// String returns the code's stable identifier.
func (c ErrorCode) String() string { return string(c) }
