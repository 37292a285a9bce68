package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/composite"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/metrics"
	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	handler *Handler
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	quiet := log.New(io.Discard)

	renderer := render.NewRenderer(&render.Skip2Backend{ModuleWidth: 2}, nil, quiet)
	painter := composite.NewPainter(quiet)
	m := metrics.New()
	sessions := NewSessions(func() *generator.Coordinator {
		return generator.New(renderer, painter,
			generator.WithLogger(quiet),
			generator.WithRecorder(m),
			generator.WithDebounce(10*time.Millisecond))
	}, time.Hour)

	h := New(Deps{
		Sessions:       sessions,
		Store:          prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json")),
		Metrics:        m,
		Logger:         quiet,
		MaxUploadBytes: 5 << 20,
	})
	r := gin.New()
	h.Register(r)
	return &testServer{t: t, engine: r, handler: h}
}

// do sends a request, carrying the session cookie across calls.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		s.cookies = cs
	}
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return body.Error
}

func TestQRCodeHandlerPNG(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/api/qr?type=sms&number=5551234567&message=Hi")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-QR-Backend") != render.BackendSkip2 {
		t.Errorf("X-QR-Backend = %q", rec.Header().Get("X-QR-Backend"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("width = %d, want default 256", img.Bounds().Dx())
	}
	if len(s.cookies) == 0 || s.cookies[0].Name != sessionCookie {
		t.Error("session cookie not issued")
	}
}

func TestQRCodeHandlerErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		status int
		msg    string
	}{
		{"invalid phone", "/api/qr?type=phone&number=123", http.StatusBadRequest, "Please enter valid data to generate QR code."},
		{"unknown type", "/api/qr?type=fax&number=5551234567", http.StatusBadRequest, "Unsupported QR code type."},
		{"bad size", "/api/qr?text=hi&size=huge", http.StatusBadRequest, "Invalid design options."},
		{"same colors", "/api/qr?text=hi&fg=%23000&bg=%23000000", http.StatusBadRequest, "Invalid design options."},
		{"bad format", "/api/qr?text=hi&format=bmp", http.StatusBadRequest, "Unsupported format"},
		{"missing preset", "/api/qr?text=hi&preset=nope", http.StatusNotFound, "Preset not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := errorOf(t, rec); got != tt.msg {
				t.Errorf("error = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestQRCodeHandlerSVGDownload(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/api/qr?type=url&url=example.com&format=svg&download=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="qrcode-url-`) || !strings.HasSuffix(cd, `.svg"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not svg")
	}
}

func TestQRCodeHandlerLarge(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/api/qr?text=hello&size=100&large=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cfg, err := png.DecodeConfig(rec.Body)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 400 {
		t.Errorf("large width = %d, want 400", cfg.Width)
	}
}

func TestDataURLHandler(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/api/qr/dataurl?type=wifi&ssid=Home&password=secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		DataURL   string `json:"dataUrl"`
		Payload   string `json:"payload"`
		Scannable bool   `json:"scannable"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.HasPrefix(body.DataURL, "data:image/png;base64,") {
		t.Errorf("dataUrl = %.40s", body.DataURL)
	}
	if body.Payload != "WIFI:T:WPA;S:Home;P:secret;H:false;;" || !body.Scannable {
		t.Errorf("payload = %q scannable = %v", body.Payload, body.Scannable)
	}
}

func TestValidateHandler(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"type": {"email"}, "to": {"not-an-email"}}
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report payload.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("json: %v", err)
	}
	if report.Valid || report.Fields["to"] != payload.FieldInvalid {
		t.Errorf("report = %+v", report)
	}
}

func multipartUpload(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadLogoAppliesToSession(t *testing.T) {
	s := newTestServer(t)

	logo := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			logo.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo); err != nil {
		t.Fatal(err)
	}

	rec := s.do(multipartUpload(t, "/api/uploads/logo", "logo.png", buf.Bytes()))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = s.get("/api/qr?text=with+logo&size=200")
	if rec.Code != http.StatusOK {
		t.Fatalf("qr status = %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, _, _ := img.At(100, 100).RGBA(); r>>8 < 240 || g>>8 > 15 {
		t.Errorf("center pixel should show the red logo, got r=%d g=%d", r>>8, g>>8)
	}

	if rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/uploads/logo", nil)); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestUploadRejections(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(multipartUpload(t, "/api/uploads/logo", "notes.txt", []byte("plain text, not an image")))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("text upload status = %d", rec.Code)
	}

	s.handler.maxUpload = 16
	rec = s.do(multipartUpload(t, "/api/uploads/background", "big.png", bytes.Repeat([]byte{0x89}, 64)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize status = %d", rec.Code)
	}

	rec = s.do(multipartUpload(t, "/api/uploads/avatar", "a.png", []byte{1}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind status = %d", rec.Code)
	}
}

func TestThemeEndpoints(t *testing.T) {
	s := newTestServer(t)
	themeOf := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Theme string `json:"theme"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return body.Theme
	}

	if got := themeOf(s.get("/api/prefs/theme")); got != "light" {
		t.Fatalf("default theme = %q", got)
	}
	if got := themeOf(s.do(httptest.NewRequest(http.MethodPost, "/api/prefs/theme/toggle", nil))); got != "dark" {
		t.Fatalf("toggled theme = %q", got)
	}
	if got := themeOf(s.get("/api/prefs/theme")); got != "dark" {
		t.Errorf("theme not persisted for session: %q", got)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/prefs/theme", strings.NewReader(`{"theme":"sepia"}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d", rec.Code)
	}

	rec := s.get("/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `data-theme="dark"`) {
		t.Errorf("home page should carry the dark theme: %d", rec.Code)
	}
}

func TestPresetEndpoints(t *testing.T) {
	s := newTestServer(t)

	body := `{"type":"url","size":300,"errorCorrection":"H","foregroundColor":"#112233","backgroundColor":"#ffffff","logoSize":20,"logoBackground":"none","backgroundOpacity":0.5,"backgroundFit":"cover"}`
	req := httptest.NewRequest(http.MethodPut, "/api/presets/brand", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec := s.get("/api/presets")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"brand"`) {
		t.Fatalf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.get("/api/qr?type=url&url=example.com&preset=brand")
	if rec.Code != http.StatusOK {
		t.Fatalf("qr with preset status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if cfg, err := png.DecodeConfig(rec.Body); err != nil || cfg.Width != 300 {
		t.Errorf("preset size not applied: %v %+v", err, cfg)
	}

	bad := httptest.NewRequest(http.MethodPut, "/api/presets/broken", strings.NewReader(`{"errorCorrection":"Z"}`))
	bad.Header.Set("Content-Type", "application/json")
	if rec := s.do(bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid preset status = %d", rec.Code)
	}

	if rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/presets/brand", nil)); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := s.get("/api/presets/brand"); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestRegenerateAndLatest(t *testing.T) {
	s := newTestServer(t)

	if rec := s.get("/api/qr/latest"); rec.Code != http.StatusNotFound {
		t.Fatalf("latest before any generation = %d", rec.Code)
	}

	for _, v := range []string{"a", "ab", "abc"} {
		req := httptest.NewRequest(http.MethodPost, "/api/qr/regenerate?text="+v, nil)
		if rec := s.do(req); rec.Code != http.StatusAccepted {
			t.Fatalf("regenerate status = %d", rec.Code)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := s.get("/api/qr/latest")
		if rec.Code == http.StatusOK {
			if rec.Header().Get("Content-Type") != "image/png" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("latest never became available: %d", rec.Code)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// waitLatest polls /api/qr/latest until ok accepts the response.
func (s *testServer) waitLatest(ok func(*httptest.ResponseRecorder) bool) *httptest.ResponseRecorder {
	s.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := s.get("/api/qr/latest")
		if ok(rec) {
			return rec
		}
		if time.Now().After(deadline) {
			s.t.Fatalf("latest never settled: %d %v", rec.Code, rec.Header())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLatestErrorClearedByLaterSuccess(t *testing.T) {
	s := newTestServer(t)

	if rec := s.get("/api/qr?text=first"); rec.Code != http.StatusOK {
		t.Fatalf("first generation = %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/qr/regenerate?type=phone&number=12", nil)
	if rec := s.do(req); rec.Code != http.StatusAccepted {
		t.Fatalf("regenerate status = %d", rec.Code)
	}
	rec := s.waitLatest(func(rec *httptest.ResponseRecorder) bool {
		return rec.Header().Get("X-QR-Error") != ""
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("latest after failed regenerate = %d, want previous image", rec.Code)
	}

	if rec := s.get("/api/qr?text=second"); rec.Code != http.StatusOK {
		t.Fatalf("second generation = %d", rec.Code)
	}
	rec = s.get("/api/qr/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("latest = %d", rec.Code)
	}
	if got := rec.Header().Get("X-QR-Error"); got != "" {
		t.Errorf("X-QR-Error = %q after a newer success", got)
	}
}

func TestPrintPage(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/print?type=phone&number=5551234567")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	b := rec.Body.String()
	if !strings.Contains(b, "window.print()") || !strings.Contains(b, "data:image/png;base64,") || !strings.Contains(b, "tel:5551234567") {
		t.Errorf("unexpected print page: %.200s", b)
	}
}

func TestGenericToast(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"title": {"<b>Saved</b>"}, "variant": {"destructive"}, "dismissible": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/api/htmx/toast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	b := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(b, `role="alert"`) || !strings.Contains(b, "&lt;b&gt;Saved") {
		t.Errorf("toast = %d %s", rec.Code, b)
	}
	if !strings.Contains(b, "data-toast-dismiss") {
		t.Error("dismiss button missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.get("/api/qr?text=hi")
	rec := s.get("/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `qrstudio_generations_total{outcome="success",type="text"} 1`) {
		t.Errorf("metrics = %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{generator.ErrValidationFailed, http.StatusBadRequest},
		{payload.ErrUnsupportedType, http.StatusBadRequest},
		{generator.ErrAlreadyInProgress, http.StatusConflict},
		{render.ErrEncodingTimeout, http.StatusGatewayTimeout},
		{errors.Join(render.ErrNoEncoderAvailable, render.ErrEncodingTimeout), http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSessionsSweep(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewSessions(func() *generator.Coordinator { return generator.New(nil, nil) }, time.Minute)
	s.now = func() time.Time { return now }

	s.get("a")
	now = now.Add(2 * time.Minute)
	s.get("b")

	if n := s.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}
