package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
	traceID string
}

func TestResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) SetupTest() {
	s.traceID = "550e8400-e29b-41d4-a716-446655440000"
}

func (s *ResponseTestSuite) TestDefaultMessageAndTraceID() {
	response := NewErrorResponse(AnalysisNotFound, s.traceID)

	s.Equal("ANALYSIS_001", response.Error.Code)
	s.Equal("Analysis not found", response.Error.Message)
	s.Equal(s.traceID, response.Error.TraceID)
	s.Empty(response.Error.Details)
}

func (s *ResponseTestSuite) TestOptionsApplyInOrder() {
	response := NewErrorResponse(
		DocumentUnreadable,
		s.traceID,
		WithMessage("first"),
		WithMessage("scanned pages came back blank"),
		WithDetails("page 1", "page 2"),
		WithDetails("page 3"),
	)

	s.Equal("DOCUMENT_004", response.Error.Code)
	s.Equal("scanned pages came back blank", response.Error.Message)
	s.Equal([]string{"page 3"}, response.Error.Details, "later options win")
}

func (s *ResponseTestSuite) TestValidationErrorListsEveryField() {
	response := NewValidationError(map[string]string{
		"text":        "is required",
		"source_name": "must be at most 255 characters",
	}, s.traceID)

	s.Equal("VALIDATION_001", response.Error.Code)
	s.Len(response.Error.Details, 2)
	s.Contains(response.Error.Details, "text: is required")
	s.Contains(response.Error.Details, "source_name: must be at most 255 characters")
}

func (s *ResponseTestSuite) TestValidationErrorWithNoFields() {
	response := NewValidationError(map[string]string{}, s.traceID)

	s.Equal("VALIDATION_001", response.Error.Code)
	s.Empty(response.Error.Details)
}

func (s *ResponseTestSuite) TestWrapSystemErrorHidesTheCause() {
	cause := errors.New("pq: connection refused at 10.0.3.7:5432")

	response, logged := WrapSystemError(cause, s.traceID)

	s.Equal("SYSTEM_001", response.Error.Code)
	s.NotContains(response.Error.Message, "pq:")
	s.NotContains(response.Error.Message, "10.0.3.7")
	s.Empty(response.Error.Details)
	s.Same(cause, logged, "the cause still comes back for the server log")
}

func (s *ResponseTestSuite) TestWireShape() {
	response := NewErrorResponse(ValidationGeneral, s.traceID,
		WithDetails("text: is required"))

	raw, err := json.Marshal(response)
	s.Require().NoError(err)

	var body map[string]map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &body))

	detail := body["error"]
	s.Equal("VALIDATION_001", detail["code"])
	s.Equal(s.traceID, detail["trace_id"])
	s.Contains(detail["details"], "text: is required")
}

func (s *ResponseTestSuite) TestEmptyDetailsOmittedFromJSON() {
	raw, err := json.Marshal(NewErrorResponse(AnalysisNotFound, s.traceID))
	s.Require().NoError(err)

	var body map[string]map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &body))
	s.NotContains(body["error"], "details")
}

func (s *ResponseTestSuite) TestStatusMapping() {
	testCases := []struct {
		code   ErrorCode
		status int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{ValidationInvalidFormat, http.StatusBadRequest},
		{DocumentMissing, http.StatusBadRequest},
		{DocumentEmptyStatement, http.StatusBadRequest},
		{AnalysisInvalidID, http.StatusBadRequest},
		{AnalysisNotFound, http.StatusNotFound},
		{DocumentTooLarge, http.StatusRequestEntityTooLarge},
		{DocumentUnsupported, http.StatusUnsupportedMediaType},
		{DocumentUnreadable, http.StatusUnprocessableEntity},
		{DocumentNoExtractor, http.StatusUnprocessableEntity},
		{AnalysisFailed, http.StatusUnprocessableEntity},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{AnalysisAgentFailed, http.StatusBadGateway},
		{SystemServiceUnavailable, http.StatusServiceUnavailable},
		{SystemInternalError, http.StatusInternalServerError},
		{SystemDatabaseError, http.StatusInternalServerError},
		{SystemUnexpectedError, http.StatusInternalServerError},
		{"UNKNOWN_999", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.status, GetHTTPStatus(tc.code))
		})
	}
}

func (s *ResponseTestSuite) TestResponseCarriesItsOwnStatus() {
	response := NewErrorResponse(AnalysisNotFound, s.traceID)
	s.Equal(http.StatusNotFound, response.GetHTTPStatus())
}
