package books

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shelfrate/shelfrate/pkg/binder"
	"github.com/shelfrate/shelfrate/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutesWithGroup(e.Group("/api/books"), db)

	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRetrieveHandler_ReturnsBook(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	author := createTestAuthor(t, db, "Frank Herbert")
	book := createTestBook(t, db, "Dune", 1965, author.ID)

	rec := doRequest(e, http.MethodGet, "/api/books/"+strconv.Itoa(book.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, book.ID, resp.ID)
	assert.Equal(t, "Dune", resp.Title)
	require.Len(t, resp.Authors, 1)
	assert.Equal(t, "Frank Herbert", resp.Authors[0].Name)
}

func TestRetrieveHandler_NotFoundPayload(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rec := doRequest(e, http.MethodGet, "/api/books/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := map[string]map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp["error"]["code"])
	assert.Equal(t, "Book not found.", resp["error"]["message"])
	assert.Equal(t, float64(http.StatusNotFound), resp["error"]["status_code"])
}

func TestRetrieveHandler_NonNumericID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rec := doRequest(e, http.MethodGet, "/api/books/abc", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateHandler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	author := createTestAuthor(t, db, "Frank Herbert")

	body := `{"title":"Dune","year":1965,"author_ids":[` + strconv.Itoa(author.ID) + `]}`
	rec := doRequest(e, http.MethodPost, "/api/books", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Dune", resp.Title)
	assert.Equal(t, 0.0, resp.AvgRating)
	require.Len(t, resp.Authors, 1)
}

func TestCreateHandler_MissingTitle(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rec := doRequest(e, http.MethodPost, "/api/books", `{"year":1965}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := map[string]map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp["error"]["code"])
}

func TestUpdateHandler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	book := createTestBook(t, db, "Dune", 1965)

	body := `{"title":"Dune Messiah","year":1969,"avg_rating":3.5}`
	rec := doRequest(e, http.MethodPut, "/api/books/"+strconv.Itoa(book.ID), body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dune Messiah", resp.Title)
	assert.Equal(t, 1969, resp.Year)
	assert.Equal(t, 3.5, resp.AvgRating)
}

func TestUpdateHandler_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rec := doRequest(e, http.MethodPut, "/api/books/999", `{"title":"Dune","year":1965}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHandler_NoContentTwice(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	book := createTestBook(t, db, "Dune", 1965)
	path := "/api/books/" + strconv.Itoa(book.ID)

	rec := doRequest(e, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateHandler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	book := createTestBook(t, db, "Dune", 1965)
	client := createTestClient(t, db, "John Doe")

	body := `{"client_id":` + strconv.Itoa(client.ID) + `,"rating":5}`
	rec := doRequest(e, http.MethodPost, "/api/books/rate/"+strconv.Itoa(book.ID), body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.AvgRating)
	require.Len(t, resp.Ratings, 1)
	assert.Equal(t, client.ID, resp.Ratings[0].ClientID)
}

func TestRateHandler_UnknownClient(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	book := createTestBook(t, db, "Dune", 1965)

	rec := doRequest(e, http.MethodPost, "/api/books/rate/"+strconv.Itoa(book.ID), `{"client_id":999,"rating":5}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := map[string]map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Client not found.", resp["error"]["message"])
}

func TestFilterHandler_ReturnsArray(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	createTestBook(t, db, "Harry Potter and the Sorcerer's Stone", 1997)
	createTestBook(t, db, "Dune", 1965)

	rec := doRequest(e, http.MethodGet, "/api/books/filter?title=harry", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := []*Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Harry Potter and the Sorcerer's Stone", resp[0].Title)
}

func TestFilterHandler_NoMatchesIsEmptyArray(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	createTestBook(t, db, "Dune", 1965)

	rec := doRequest(e, http.MethodGet, "/api/books/filter?title=nothing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestFilterHandler_RatingThreshold(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	book := createTestBook(t, db, "Dune", 1965)
	createTestBook(t, db, "The Hobbit", 1937)
	client := createTestClient(t, db, "John Doe")

	svc := NewService(db)
	_, err := svc.RateBook(context.Background(), book.ID, client.ID, 4)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/api/books/filter?rating=4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := []*Book{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, book.ID, resp[0].ID)
}
