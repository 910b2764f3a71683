package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/hugrlab/jeffc/pkg/cache"
	"github.com/hugrlab/jeffc/pkg/graph"
	"github.com/hugrlab/jeffc/pkg/hugr"
	"github.com/hugrlab/jeffc/pkg/jeff"
	"github.com/hugrlab/jeffc/pkg/pipeline"
)

// newTestHandler builds a handler over a file-cached runner so cache
// behavior is observable through response headers.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(fc, nil, logger)
	t.Cleanup(func() { _ = runner.Close() })
	return NewHandler(runner, logger)
}

// container encodes a function that applies a Hadamard to its qubit
// argument and measures it.
func container(t *testing.T) []byte {
	t.Helper()
	w := jeff.NewWriter()
	tQubit := w.Type(jeff.TypeQubit, 0)
	tBit := w.Type(jeff.TypeInt, 1)

	root := w.Root()
	fn := w.Node(root, uint16(graph.OpFuncDefn), "main")
	w.Input(fn, tQubit)
	w.Output(fn, tBit)

	body := w.Region(fn, 0)
	src := w.Source(body, tQubit)
	res := w.Result(body, tBit)

	h := w.Node(body, uint16(graph.OpGate), "h", w.GateAttrs("h", 1, 0, 0, false, 1)...)
	hIn := w.Input(h, tQubit)
	hOut := w.Output(h, tQubit)
	m := w.Node(body, uint16(graph.OpQubitMeasure), "m")
	mIn := w.Input(m, tQubit)
	mOut := w.Output(m, tBit)

	w.Edge(body, src, hIn)
	w.Edge(body, hOut, mIn)
	w.Edge(body, mOut, res)
	return w.Encode()
}

// aliasedContainer encodes a program whose linear qubit output feeds
// two consumers.
func aliasedContainer(t *testing.T) []byte {
	t.Helper()
	w := jeff.NewWriter()
	tQubit := w.Type(jeff.TypeQubit, 0)
	root := w.Root()
	alloc := w.Node(root, uint16(graph.OpQubitAlloc), "q")
	out := w.Output(alloc, tQubit)
	f1 := w.Node(root, uint16(graph.OpQubitFree), "f1")
	f2 := w.Node(root, uint16(graph.OpQubitFree), "f2")
	w.Edge(root, out, w.Input(f1, tQubit))
	w.Edge(root, out, w.Input(f2, tQubit))
	return w.Encode()
}

func post(t *testing.T, h http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// /healthz
// =============================================================================

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Version)
}

// =============================================================================
// /v1/convert
// =============================================================================

func TestConvertHugr(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte(hugr.Magic)))
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	require.Equal(t, "MISS", rr.Header().Get("X-Cache"))
}

func TestConvertCacheHit(t *testing.T) {
	h := newTestHandler(t)
	input := container(t)

	first := post(t, h, "/v1/convert", input)
	require.Equal(t, http.StatusOK, first.Code)

	second := post(t, h, "/v1/convert", input)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestConvertCompress(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert?compress=1", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	env := rr.Body.Bytes()
	require.Greater(t, len(env), 8)
	flags := binary.LittleEndian.Uint16(env[6:8])
	require.NotZero(t, flags&hugr.FlagZstd, "compress=1 sets the zstd flag")
}

func TestConvertMermaidMode(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert?mode=mermaid", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "flowchart"))
}

func TestConvertInvalidMode(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert?mode=png", container(t))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_mode", decodeError(t, rr).Error)
}

func TestConvertBadContainer(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert", []byte("not a container"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	require.Equal(t, "invalid_container", resp.Error)
	require.Contains(t, resp.Message, "decode")
}

func TestConvertValidationFailure(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/convert", aliasedContainer(t))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	resp := decodeError(t, rr)
	require.Equal(t, "validation_failed", resp.Error)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "linearity", resp.Errors[0].Kind)
}

func TestConvertClientCancel(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/v1/convert", bytes.NewReader(container(t)))
	req = req.WithContext(ctx)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, statusClientClosedRequest, rr.Code)
}

func TestConvertMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/convert", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// =============================================================================
// /v1/render
// =============================================================================

func TestRenderDefaultsToMermaid(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/render", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "flowchart"))
}

func TestRenderDOT(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/render?format=dot", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), "digraph"))
}

func TestRenderSVG(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/render?format=svg", container(t))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), "<svg")
}

func TestRenderInvalidFormat(t *testing.T) {
	h := newTestHandler(t)
	rr := post(t, h, "/v1/render?format=hugr", container(t))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_format", decodeError(t, rr).Error)
}

// =============================================================================
// Middleware
// =============================================================================

func TestRequestIDHonorsClientHeader(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-chosen")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "client-chosen", rr.Header().Get("X-Request-ID"))
}
