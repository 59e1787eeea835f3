package terabox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgError "github.com/AzielCF/az-telebox/pkg/error"
)

func TestResolve_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","media_url":"https://cdn.example/v.mp4","title":"Clip","thumbnail":"https://cdn.example/t.jpg"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	res, err := client.Resolve(context.Background(), "https://terabox.com/s/abc?x=1")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/v.mp4", res.MediaURL)
	assert.Equal(t, "Clip", res.Title)
	assert.Equal(t, "https://cdn.example/t.jpg", res.Thumbnail)

	// The share link must travel URL-encoded.
	assert.Contains(t, gotPath, "url=https%3A%2F%2Fterabox.com%2Fs%2Fabc%3Fx%3D1")
}

func TestResolve_UpstreamReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"bad link"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	_, err := client.Resolve(context.Background(), "https://terabox.com/s/abc")
	require.Error(t, err)

	var procErr pkgError.UpstreamProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "bad link", procErr.Error())
}

func TestResolve_UpstreamFailureWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	_, err := client.Resolve(context.Background(), "https://terabox.com/s/abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response from API")
}

func TestResolve_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	_, err := client.Resolve(context.Background(), "https://terabox.com/s/abc")
	require.Error(t, err)

	var procErr pkgError.UpstreamProcessingError
	assert.ErrorAs(t, err, &procErr)
}

func TestResolve_Non2xxAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	_, err := client.Resolve(context.Background(), "https://terabox.com/s/abc")
	require.Error(t, err)

	var procErr pkgError.UpstreamProcessingError
	assert.False(t, errors.As(err, &procErr), "transport failures are not processing errors")
}

func TestResolve_SuccessWithoutMediaURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","title":"Clip"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/api?url="})

	_, err := client.Resolve(context.Background(), "https://terabox.com/s/abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "media_url")
}
