package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	orderImpl "github.com/scienceol/sampletrack/pkg/core/order/order"
	sampleImpl "github.com/scienceol/sampletrack/pkg/core/sample/sample"
	"github.com/scienceol/sampletrack/pkg/middleware/metrics"
	"github.com/scienceol/sampletrack/pkg/repo/memory"
	"github.com/scienceol/sampletrack/pkg/repo/store"
	notifyView "github.com/scienceol/sampletrack/pkg/web/views/notify"
	orderView "github.com/scienceol/sampletrack/pkg/web/views/order"
	sampleView "github.com/scienceol/sampletrack/pkg/web/views/sample"
)

type envelope struct {
	Code  code.ErrCode    `json:"code"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Msg  string          `json:"msg"`
		Info json.RawMessage `json:"info"`
	} `json:"error"`
}

type testServer struct {
	engine  *gin.Engine
	handles *Handles
	close   context.CancelFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	s := memory.New()
	store.SetTracking(s)
	center := events.NewWithClient(nil)

	h := &Handles{
		Order:   orderView.NewOrderHandleWith(orderImpl.NewWithStore(s, center)),
		Sample:  sampleView.NewSampleHandleWith(sampleImpl.NewWithStore(s, center)),
		Notify:  notifyView.NewNotifyHandleWith(ctx, center),
		Metrics: metrics.NewRegistry(),
	}
	g := gin.New()
	closeFn := NewRouterWith(g, h)
	t.Cleanup(closeFn)
	return &testServer{engine: g, handles: h, close: closeFn}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, *envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	env := &envelope{}
	if err := json.Unmarshal(w.Body.Bytes(), env); err != nil {
		t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", string(raw), err)
	}
	return v
}

func TestSampleLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	a, b := uuid.NewV4().String(), uuid.NewV4().String()

	status, env := s.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order": []map[string]string{
			{"sample_uuid": a, "sequence": "ACGT"},
			{"sample_uuid": b, "sequence": "TTGA"},
		},
	})
	if status != http.StatusOK || env.Code != code.Success {
		t.Fatalf("create order: %d %+v", status, env)
	}
	created := decode[map[string]string](t, env.Data)
	if created["order_uuid"] == "" {
		t.Fatalf("missing order_uuid in %s", string(env.Data))
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order": []map[string]string{{"sample_uuid": a, "sequence": "ACGT"}},
	})
	if status != http.StatusConflict || env.Code != code.SampleAlreadyExistErr {
		t.Fatalf("expected 409 for existing sample, got %d %+v", status, env)
	}
	repeated := decode[map[string][]string](t, env.Data)
	if len(repeated["repeat_sample_uuids"]) != 1 || repeated["repeat_sample_uuids"][0] != a {
		t.Fatalf("unexpected repeat list %s", string(env.Data))
	}

	status, _ = s.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order": []map[string]string{{"sample_uuid": b, "sequence": "A"}, {"sample_uuid": b, "sequence": "C"}},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate input, got %d", status)
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/samples/to-process", nil)
	if status != http.StatusOK {
		t.Fatalf("to-process: %d", status)
	}
	toMake := decode[struct {
		SamplesToMake []struct {
			SampleUUID string `json:"sample_uuid"`
			Sequence   string `json:"sequence"`
		} `json:"samples_to_make"`
	}](t, env.Data)
	if len(toMake.SamplesToMake) != 2 {
		t.Fatalf("expected 2 samples to make, got %s", string(env.Data))
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/samples/qc-results", map[string]any{
		"samples_made": []map[string]any{
			{"sample_uuid": a, "plate_id": 1, "well": "A1", "qc_1": 11.5, "qc_2": 6, "qc_3": "PASS"},
			{"sample_uuid": b, "plate_id": 1, "well": "A2", "qc_1": 1, "qc_2": 6, "qc_3": "PASS"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("qc-results: %d %+v", status, env.Error)
	}
	if msg := decode[map[string]string](t, env.Data)["message"]; msg != "QC results logged successfully" {
		t.Fatalf("unexpected message %q", msg)
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/samples/qc-results", map[string]any{
		"samples_made": []map[string]any{{"sample_uuid": a, "plate_id": 1, "well": "A1", "qc_1": 11.5, "qc_2": 6, "qc_3": "PASS"}},
	})
	if status != http.StatusConflict || env.Code != code.QCAlreadyLoggedErr {
		t.Fatalf("expected 409 already logged, got %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/samples/to-ship", nil)
	toShip := decode[map[string][]map[string]any](t, env.Data)["samples_to_ship"]
	if status != http.StatusOK || len(toShip) != 1 || toShip[0]["sample_uuid"] != a || toShip[0]["well"] != "A1" {
		t.Fatalf("unexpected to-ship %d %s", status, string(env.Data))
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/samples/shipped", map[string]any{"samples_shipped": []string{b}})
	if status != http.StatusConflict || env.Code != code.InvalidStateTransitionErr {
		t.Fatalf("expected failed sample to be refused, got %d %+v", status, env)
	}
	detail := decode[map[string]string](t, env.Error.Info)
	if detail["sample_uuid"] != b || detail["status"] != "FAILED" {
		t.Fatalf("unexpected detail %s", string(env.Error.Info))
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/samples/shipped", map[string]any{"samples_shipped": []string{a}})
	if status != http.StatusOK {
		t.Fatalf("shipped: %d %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/orders/status", map[string]string{
		"order_uuid_to_get_sample_statuses_for": created["order_uuid"],
	})
	statuses := decode[map[string][]map[string]string](t, env.Data)["sample_statuses"]
	if status != http.StatusOK || len(statuses) != 2 || statuses[0]["status"] != "SHIPPED" || statuses[1]["status"] != "FAILED" {
		t.Fatalf("unexpected order status %d %s", status, string(env.Data))
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/sample/status", map[string]string{"sample_uuid_to_get_tat_for": b})
	tat := decode[map[string]any](t, env.Data)
	if status != http.StatusOK || tat["sample_shipped"] != nil || tat["order_placed"] == nil {
		t.Fatalf("unexpected tat for unshipped sample %s", string(env.Data))
	}
	_, env = s.do(t, http.MethodPost, "/api/v1/sample/status", map[string]string{"sample_uuid_to_get_tat_for": a})
	if tat := decode[map[string]any](t, env.Data); tat["sample_shipped"] == nil {
		t.Fatalf("shipped sample must carry a ship time: %s", string(env.Data))
	}
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   code.ErrCode
	}{
		{"malformed json", http.MethodPost, "/api/v1/orders", `{"order": [`, http.StatusBadRequest, code.ParamErr},
		{"bad uuid", http.MethodPost, "/api/v1/orders", `{"order":[{"sample_uuid":"nope"}]}`, http.StatusBadRequest, code.ParamErr},
		{"missing sequence", http.MethodPost, "/api/v1/orders", map[string]any{"order": []map[string]string{{"sample_uuid": uuid.NewV4().String()}}}, http.StatusBadRequest, code.ParamErr},
		{"unknown order", http.MethodPost, "/api/v1/orders/status", map[string]string{"order_uuid_to_get_sample_statuses_for": uuid.NewV4().String()}, http.StatusNotFound, code.OrderNotFoundErr},
		{"unknown sample", http.MethodPost, "/api/v1/sample/status", map[string]string{"sample_uuid_to_get_tat_for": uuid.NewV4().String()}, http.StatusNotFound, code.SampleNotFoundErr},
		{"qc for unknown sample", http.MethodPost, "/api/v1/samples/qc-results", map[string]any{"samples_made": []map[string]any{{"sample_uuid": uuid.NewV4().String(), "qc_3": "PASS"}}}, http.StatusBadRequest, code.SamplesNotFoundErr},
		{"ship unknown sample", http.MethodPost, "/api/v1/samples/shipped", map[string]any{"samples_shipped": []string{uuid.NewV4().String()}}, http.StatusBadRequest, code.SamplesNotFoundErr},
		{"claim nothing", http.MethodPost, "/api/v1/samples/claim", map[string]any{"sample_uuids": []string{}}, http.StatusBadRequest, code.ParamErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := s.do(t, tc.method, tc.path, tc.body)
			if status != tc.status || env.Code != tc.code {
				t.Fatalf("got %d/%d, want %d/%d", status, env.Code, tc.status, tc.code)
			}
			if env.Error == nil || env.Error.Msg == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/health", "/api/health/live", "/api/health/ready", "/health-check"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got %d body %s", path, w.Code, w.Body.String())
		}
	}
}

func TestStatusChangesStreamOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws/samples", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.handles.Notify.Sessions() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("websocket session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	id := uuid.NewV4().String()
	if status, _ := s.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order": []map[string]string{{"sample_uuid": id, "sequence": "A"}},
	}); status != http.StatusOK {
		t.Fatalf("create order: %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/v1/samples/claim", map[string]any{"sample_uuids": []string{id}}); status != http.StatusOK {
		t.Fatalf("claim: %d", status)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Action string              `json:"action"`
		Data   notify.StatusChange `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %s: %v", string(raw), err)
	}
	if msg.Action != string(notify.SampleStatusChanged) || msg.Data.SampleUUID.String() != id || msg.Data.To != "PROCESSING" {
		t.Fatalf("unexpected message %s", string(raw))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/samples/to-ship", nil)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `route="/api/v1/samples/to-ship"`) {
		t.Fatalf("expected a request observation for the ship queue")
	}
}
