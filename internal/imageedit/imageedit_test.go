package imageedit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
)

var (
	pngIn  = base64.StdEncoding.EncodeToString([]byte("input-png"))
	pngOut = base64.StdEncoding.EncodeToString([]byte("output-png"))
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func geminiServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Contents, 1) && assert.Len(t, req.Contents[0].Parts, 2) {
			img := req.Contents[0].Parts[0].InlineData
			if assert.NotNil(t, img) {
				assert.Equal(t, pngIn, img.Data)
				assert.Equal(t, "image/jpeg", img.MimeType)
			}
			assert.Equal(t, Prompt("add a red arrow"), req.Contents[0].Parts[1].Text)
		}
		_, _ = io.WriteString(w, reply)
	}))
}

func newTestEditor(url string) *Editor {
	return NewEditor(EditorOptions{
		Client:  httpx.NewClient(httpx.WithMaxRetries(0)),
		BaseURL: url,
		APIKey:  "k",
		Model:   "gemini-test",
		Logger:  quiet(),
	})
}

func TestEditor_ReturnsFirstInlineImage(t *testing.T) {
	srv := geminiServer(t, `{"candidates":[{"content":{"parts":[
		{"text":"here you go"},
		{"inlineData":{"mimeType":"image/png","data":"`+pngOut+`"}}]}}]}`)
	defer srv.Close()

	out, err := newTestEditor(srv.URL).Edit(context.Background(), "data:image/jpeg;base64,"+pngIn, "add a red arrow")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+pngOut, out)
}

func TestEditor_NoImageInResponse(t *testing.T) {
	srv := geminiServer(t, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`)
	defer srv.Close()

	_, err := newTestEditor(srv.URL).Edit(context.Background(), "data:image/jpeg;base64,"+pngIn, "add a red arrow")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestEditor_Validation(t *testing.T) {
	disabled := NewEditor(EditorOptions{Logger: quiet()})
	_, err := disabled.Edit(context.Background(), pngIn, "x")
	assert.ErrorIs(t, err, ErrDisabled)

	e := newTestEditor("http://127.0.0.1:1")
	_, err = e.Edit(context.Background(), pngIn, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = e.Edit(context.Background(), "data:image/png;base64,@@@", "x")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSplitDataURL(t *testing.T) {
	mime, data, err := SplitDataURL("data:image/webp;base64," + pngIn)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)
	assert.Equal(t, pngIn, data)

	mime, data, err = SplitDataURL(pngIn)
	require.NoError(t, err)
	assert.Equal(t, DefaultMIME, mime)
	assert.Equal(t, pngIn, data)

	_, _, err = SplitDataURL("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidImage)
	_, _, err = SplitDataURL("")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

// memStore records uploads.
type memStore struct {
	keys []string
	body []byte
	err  error
}

func (m *memStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.keys = append(m.keys, key)
	m.body = body
	return "https://cdn.example/" + key, nil
}

func TestService_UploadsResult(t *testing.T) {
	srv := geminiServer(t, `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"`+pngOut+`"}}]}}]}`)
	defer srv.Close()

	store := &memStore{}
	svc := NewService(newTestEditor(srv.URL), store, quiet())

	res, err := svc.Edit(context.Background(), "data:image/jpeg;base64,"+pngIn, "add a red arrow")
	require.NoError(t, err)
	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], "thumbnails/"))
	assert.Equal(t, []byte("output-png"), store.body)
	assert.Equal(t, "https://cdn.example/"+store.keys[0], res.URL)
}

func TestService_UploadFailureKeepsInlineImage(t *testing.T) {
	srv := geminiServer(t, `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"`+pngOut+`"}}]}}]}`)
	defer srv.Close()

	svc := NewService(newTestEditor(srv.URL), &memStore{err: errors.New("bucket gone")}, quiet())
	res, err := svc.Edit(context.Background(), "data:image/jpeg;base64,"+pngIn, "add a red arrow")
	require.NoError(t, err)
	assert.Empty(t, res.URL)
	assert.Equal(t, "data:image/png;base64,"+pngOut, res.Image)
}
