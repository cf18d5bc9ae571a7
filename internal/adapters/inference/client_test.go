package inference

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_ForwardsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "leaf.jpg", hdr.Filename)
		assert.Equal(t, "jpegbytes", string(data))
		_, _ = w.Write([]byte(`{"disease":"Tomato___Late_blight","confidence":0.93}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL+"/", time.Second).Predict(context.Background(), "leaf.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"disease":"Tomato___Late_blight","confidence":0.93}`, string(got))
}

func TestPredict_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Predict(context.Background(), "leaf.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPredict_Unreachable(t *testing.T) {
	_, err := New("http://127.0.0.1:1", time.Second).Predict(context.Background(), "leaf.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUpstream)
}
