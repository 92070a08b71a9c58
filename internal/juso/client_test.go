package juso

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Results(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "세종대로", r.PostForm.Get("keyword"))
		assert.Equal(t, "test-key", r.PostForm.Get("confmKey"))
		assert.Equal(t, "20", r.PostForm.Get("countPerPage"))

		// Сервис отдает JSON с text/html - клиент не должен на это полагаться
		w.Header().Set("Content-Type", "text/html;charset=UTF-8")
		_, _ = w.Write([]byte(`{"results":{"common":{"errorCode":"0","errorMessage":"정상"},
			"juso":[{"roadAddr":"서울특별시 중구 세종대로 110","jibunAddr":"서울특별시 중구 태평로1가 31","zipNo":"04524"}]}}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "test-key").Search(context.Background(), "  세종대로 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "서울특별시 중구 세종대로 110", got[0].RoadAddr)
	assert.Equal(t, "04524", got[0].ZipNo)
}

func TestSearch_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"common":{"errorCode":"0"},"juso":[]}}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "k").Search(context.Background(), "없는주소")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"common":{"errorCode":"E0001","errorMessage":"승인되지 않은 KEY 입니다."}}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad").Search(context.Background(), "세종대로")
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "승인되지 않은 KEY 입니다.", lookupErr.Message)
}

func TestSearch_HTTPFailureNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").Search(context.Background(), "세종대로")
	require.Error(t, err)
	assert.Equal(t, "주소 검색 요청에 실패했습니다.", err.Error())
	assert.Equal(t, 1, calls)
}

func TestSearch_EmptyKeyword(t *testing.T) {
	_, err := New("http://127.0.0.1:0", "k").Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyKeyword)
}
