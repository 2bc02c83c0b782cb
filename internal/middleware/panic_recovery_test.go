package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fincoach/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
}

func (s *PanicRecoveryTestSuite) TestPanicBecomesSystemError() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil), rec)
	c.Set(TraceIDContextKey, "trace-under-test")

	handler := PanicRecovery()(func(echo.Context) error {
		panic("extractor blew up")
	})

	s.NotPanics(func() { _ = handler(c) })
	s.Equal(http.StatusInternalServerError, rec.Code)

	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(string(errors.SystemInternalError), response.Error.Code)
	s.Equal("trace-under-test", response.Error.TraceID)
}

func (s *PanicRecoveryTestSuite) TestMissingTraceIDFallsBackToUnknown() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := PanicRecovery()(func(echo.Context) error {
		panic("no trace")
	})

	s.NotPanics(func() { _ = handler(c) })

	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("unknown", response.Error.TraceID)
}

func (s *PanicRecoveryTestSuite) TestNormalFlowUntouched() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	err := PanicRecovery()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *PanicRecoveryTestSuite) TestRecoversAnyPanicValue() {
	values := []interface{}{"text", 42, struct{ msg string }{"boom"}, nil}

	for _, v := range values {
		rec := httptest.NewRecorder()
		c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		handler := PanicRecovery()(func(echo.Context) error {
			panic(v)
		})

		s.NotPanics(func() { _ = handler(c) })
		s.Equal(http.StatusInternalServerError, rec.Code)
	}
}
