package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moneytag/moneytag/internal/model"
	"github.com/moneytag/moneytag/internal/repository"
	"github.com/moneytag/moneytag/internal/repository/mocks"
	"github.com/moneytag/moneytag/internal/service"
)

const owner = "default"

func newTestRouter(t *testing.T, repo repository.Records) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(NewHandler(service.NewRecorder(repo)), owner, "")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func submit(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(htmxRequestHeader, "true")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleCreate_Lunch(t *testing.T) {
	repo := repository.NewLocalStorage()
	r := newTestRouter(t, repo)

	w := submit(r, "/handle-create", url.Values{
		"title":  {"Lunch"},
		"amount": {"12.5"},
		"tag":    {"food,out"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `<section id="records">`)
	require.Contains(t, w.Body.String(), "Lunch")
	require.Contains(t, w.Body.String(), "12.50")
	require.NotContains(t, w.Body.String(), "<html")

	records, err := repo.Records(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []*model.Record{{
		Owner:  owner,
		Title:  "Lunch",
		Amount: 12.5,
		Tags:   []string{"food", "out"},
	}}, records)
}

func TestHandleCreate_CreatePath(t *testing.T) {
	repo := repository.NewLocalStorage()
	r := newTestRouter(t, repo)

	w := submit(r, "/create", url.Values{"title": {"Rent"}, "amount": {"560"}, "tag": {"home"}})
	require.Equal(t, http.StatusOK, w.Code)

	records, err := repo.Records(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, len(records))
}

func TestHandleCreate_Amounts(t *testing.T) {
	testTable := []struct {
		name   string
		amount string
		result float64
	}{
		{name: "Zero", amount: "0.0", result: 0},
		{name: "Negative", amount: "-20.4", result: -20.4},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			repo := repository.NewLocalStorage()
			r := newTestRouter(t, repo)

			w := submit(r, "/handle-create", url.Values{"title": {"x"}, "amount": {testCase.amount}, "tag": {"t"}})
			require.Equal(t, http.StatusOK, w.Code)

			records, err := repo.Records(context.Background(), owner)
			if err != nil {
				t.Fatal(err)
			}
			require.Equal(t, 1, len(records))
			require.Equal(t, testCase.result, records[0].Amount)
		})
	}
}

func TestHandleCreate_DecodeErrors(t *testing.T) {
	testTable := []struct {
		name string
		form url.Values
	}{
		{name: "Non numeric amount", form: url.Values{"title": {"Lunch"}, "amount": {"abc"}, "tag": {"food"}}},
		{name: "Empty amount", form: url.Values{"title": {"Lunch"}, "amount": {""}, "tag": {"food"}}},
		{name: "Missing amount", form: url.Values{"title": {"Lunch"}, "tag": {"food"}}},
		{name: "Missing title", form: url.Values{"amount": {"1"}, "tag": {"food"}}},
		{name: "Missing tag", form: url.Values{"title": {"Lunch"}, "amount": {"1"}}},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewRecords(t)
			r := newTestRouter(t, repo)

			w := submit(r, "/handle-create", testCase.form)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, w.Body.String(), "Something went wrong")
			repo.AssertNotCalled(t, "AddRecord", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleCreate_EmptyTitleAndTag(t *testing.T) {
	repo := repository.NewLocalStorage()
	r := newTestRouter(t, repo)

	w := submit(r, "/handle-create", url.Values{"title": {""}, "amount": {"1"}, "tag": {""}})
	require.Equal(t, http.StatusOK, w.Code)

	records, err := repo.Records(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, len(records))
	require.Equal(t, "", records[0].Title)
	require.Equal(t, []string{""}, records[0].Tags)
}

func TestHandleCreate_WriteError(t *testing.T) {
	repo := mocks.NewRecords(t)
	repo.On("AddRecord", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: insert refused", repository.ErrWrite)).Once()
	r := newTestRouter(t, repo)

	w := submit(r, "/handle-create", url.Values{"title": {"Lunch"}, "amount": {"12.5"}, "tag": {"food"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "insert refused")
	repo.AssertNotCalled(t, "Records", mock.Anything, mock.Anything)
}

func TestHandleCreate_ReadAfterWriteError(t *testing.T) {
	repo := mocks.NewRecords(t)
	repo.On("AddRecord", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Records", mock.Anything, owner).Return(nil, errors.New("cursor lost")).Once()
	r := newTestRouter(t, repo)

	w := submit(r, "/handle-create", url.Values{"title": {"Lunch"}, "amount": {"12.5"}, "tag": {"food"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "cursor lost")
}

func TestHandleCreate_Concurrent(t *testing.T) {
	const n = 40
	repo := repository.NewLocalStorage()
	r := newTestRouter(t, repo)

	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := submit(r, "/handle-create", url.Values{
				"title":  {fmt.Sprintf("record %d", i)},
				"amount": {fmt.Sprint(i)},
				"tag":    {"load"},
			})
			codes <- w.Code
		}(i)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		require.Equal(t, http.StatusOK, code)
	}

	records, err := repo.Records(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, n, len(records))
}

func TestIndex(t *testing.T) {
	repo := repository.NewLocalStorage()
	err := repo.AddRecords(context.Background(), []*model.Record{
		{Owner: owner, Title: "coffee", Amount: 3.5, Tags: []string{"food"}},
		{Owner: owner, Title: "rent", Amount: 560, Tags: []string{"home"}},
		{Owner: "somebody else", Title: "secret", Amount: 1, Tags: []string{"hidden"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, repo)

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "<html")
	require.Contains(t, body, "coffee")
	require.Contains(t, body, "rent")
	require.Contains(t, body, "563.50")
	require.NotContains(t, body, "secret")
}

func TestIndex_ReadError(t *testing.T) {
	repo := mocks.NewRecords(t)
	repo.On("Records", mock.Anything, owner).
		Return(nil, fmt.Errorf("%w: server selection timeout", repository.ErrRead)).Once()
	r := newTestRouter(t, repo)

	w := get(r, "/")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "server selection timeout")
}

func TestCreateForm(t *testing.T) {
	repo := mocks.NewRecords(t)
	r := newTestRouter(t, repo)

	w := get(r, "/create")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `name="title"`)
	require.Contains(t, w.Body.String(), `name="amount"`)
	require.Contains(t, w.Body.String(), `name="tag"`)
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, mocks.NewRecords(t))

	w := get(r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc", w.Header().Get(requestIDHeader))
}

func TestHandleCreate_PlainFormPostRendersPage(t *testing.T) {
	repo := repository.NewLocalStorage()
	r := newTestRouter(t, repo)

	form := url.Values{"title": {"Lunch"}, "amount": {"12.5"}, "tag": {"food"}}
	req := httptest.NewRequest(http.MethodPost, "/handle-create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<html")
	require.Contains(t, w.Body.String(), `<section id="records">`)
	require.Contains(t, w.Body.String(), "Lunch")
}

func TestIndex_NonFiniteAmountStored(t *testing.T) {
	repo := repository.NewLocalStorage()
	err := repo.AddRecords(context.Background(), []*model.Record{
		{Owner: owner, Title: "coffee", Amount: 3.5, Tags: []string{"food"}},
		{Owner: owner, Title: "broken", Amount: math.Inf(1), Tags: []string{"food"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, repo)

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "3.50")
	require.Contains(t, w.Body.String(), "1 record(s) with an invalid amount")
}

func TestHandleCreate_NonFiniteAmountRejected(t *testing.T) {
	repo := mocks.NewRecords(t)
	r := newTestRouter(t, repo)

	w := submit(r, "/handle-create", url.Values{"title": {"x"}, "amount": {"Inf"}, "tag": {"t"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "AddRecord", mock.Anything, mock.Anything)
}
