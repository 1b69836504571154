package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"tokencount-backend/internal/shared/apperrors"
)

func TestFromErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", apperrors.Validation(`"file" is required`), http.StatusBadRequest, "VALIDATION_ERROR", `"file" is required`},
		{"unsupported", apperrors.UnsupportedMediaType("image/png"), http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", "unsupported file type"},
		{"extraction", apperrors.Extraction("application/pdf", errors.New("bad xref")), http.StatusBadRequest, "EXTRACTION_ERROR", "failed to extract text from document"},
		{"not found", apperrors.NotFound("Document not found"), http.StatusNotFound, "NOT_FOUND", "Document not found"},
		{"store", apperrors.Store("ping", errors.New("dial tcp: refused")), http.StatusInternalServerError, "STORE_ERROR", "document store unavailable"},
		{"internal", errors.New("secret detail"), http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(resp)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			FromError(c, tc.err)

			require.Equal(t, tc.status, resp.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			require.False(t, body.Success)
			require.Equal(t, tc.code, body.Error.Code)
			require.Equal(t, tc.message, body.Error.Message)
			require.NotContains(t, resp.Body.String(), "secret detail")
			require.NotContains(t, resp.Body.String(), "refused")
		})
	}
}
