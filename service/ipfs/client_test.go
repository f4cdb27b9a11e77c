package ipfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Success(t *testing.T) {
	var gotAuth string
	var gotName string
	var gotPinataMetadata string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotName = header.Filename
		gotPinataMetadata = r.FormValue("pinataMetadata")

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"IpfsHash":"QmTestHash123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "test-jwt", 3, nil, nil, nil)

	locator, err := client.Store(context.Background(), []byte("image-bytes"), "image/png", "logo.png")
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.test/ipfs/QmTestHash123", locator)
	assert.Equal(t, "Bearer test-jwt", gotAuth)
	assert.Equal(t, "logo.png", gotName)
	assert.JSONEq(t, `{"name":"logo.png"}`, gotPinataMetadata)
}

func TestStore_EmptyPayload(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "jwt", 3, nil, nil, nil)

	_, err := client.Store(context.Background(), nil, "image/png", "empty.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payload")
	assert.Equal(t, 0, requests, "empty payload must not reach the network")
}

func TestStore_ClientErrorNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "bad-jwt", 3, nil, nil, nil)

	_, err := client.Store(context.Background(), []byte("x"), "image/png", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, 1, requests, "4xx responses fail identically on every attempt")
}

func TestStore_ServerErrorRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"IpfsHash":"QmAfterRetry"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "jwt", 3, nil, nil, nil)

	locator, err := client.Store(context.Background(), []byte("x"), "image/png", "x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.test/ipfs/QmAfterRetry", locator)
	assert.Equal(t, 2, requests)
}

func TestStore_AttemptsBounded(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "jwt", 2, nil, nil, nil)

	_, err := client.Store(context.Background(), []byte("x"), "image/png", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, 2, requests)
}

func TestStore_MissingContentIdentifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test", "jwt", 1, nil, nil, nil)

	_, err := client.Store(context.Background(), []byte("x"), "image/png", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing content identifier")
}

func TestStore_GatewayTrailingSlashTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"IpfsHash":"QmX"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.test/", "jwt", 1, nil, nil, nil)

	locator, err := client.Store(context.Background(), []byte("x"), "image/png", "x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.test/ipfs/QmX", locator)
}
