package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errStale = errors.New("stale")

func serve(t *testing.T, responder *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/things/:id", func(c *gin.Context) { responder.RespondError(c, err) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/things/7", nil))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestResponder_UsesMappers(t *testing.T) {
	responder := NewResponder("", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errStale) {
			return ErrConflict.WithDetail(err.Error()).WithKind("stale"), true
		}
		return ProblemDetail{}, false
	})

	rec, problem := serve(t, responder, errStale)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, TypeConflict, problem.Type)
	require.Equal(t, "stale", problem.Kind)
	require.Equal(t, "/v1/things/7", problem.Instance)
}

func TestResponder_FallsBackToInternal(t *testing.T) {
	rec, problem := serve(t, NewResponder("https://errors.example"), errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "https://errors.example"+TypeInternal, problem.Type)
	require.Equal(t, "boom", problem.Detail)
}

func TestResponder_PassesProblemsThrough(t *testing.T) {
	rec, problem := serve(t, NewResponder(""), ErrNotFound.WithDetail("thing 7"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "thing 7", problem.Detail)
}

func TestProblemDetail_WithExtensionCopies(t *testing.T) {
	base := ErrConflict.WithExtension("a", 1)
	derived := base.WithExtension("b", 2)
	require.Len(t, base.Extras, 1)
	require.Len(t, derived.Extras, 2)
}
