package syncengine_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/access-bridge/internal/syncengine"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockEngineAPI struct {
	pushOpts    []syncengine.PushOptions
	pullOpts    []syncengine.PullOptions
	pushSummary syncengine.PushSummary
	pullSummary syncengine.PullSummary
	pushErr     error
	pullErr     error
}

func (m *mockEngineAPI) PushUsers(opts syncengine.PushOptions) (syncengine.PushSummary, error) {
	m.pushOpts = append(m.pushOpts, opts)
	return m.pushSummary, m.pushErr
}

func (m *mockEngineAPI) PullLogs(opts syncengine.PullOptions) (syncengine.PullSummary, error) {
	m.pullOpts = append(m.pullOpts, opts)
	return m.pullSummary, m.pullErr
}

var _ = Describe("Handler", func() {
	var (
		engine  *mockEngineAPI
		handler *syncengine.Handler
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		engine = &mockEngineAPI{
			pushSummary: syncengine.PushSummary{UsersSynced: 4, TemplatesSynced: 2, Devices: 2},
			pullSummary: syncengine.PullSummary{LogsSaved: 7, Devices: 2},
		}
		handler = syncengine.NewHandler(engine, testLogger)
	})

	Describe("TriggerPush", func() {
		It("should run the push flow and return the summary", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync/users", nil)
			rec := httptest.NewRecorder()

			handler.TriggerPush(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(engine.pushOpts).To(HaveLen(1))
			Expect(engine.pushOpts[0].Window).To(BeNil())

			var summary syncengine.PushSummary
			Expect(json.Unmarshal(rec.Body.Bytes(), &summary)).To(Succeed())
			Expect(summary.UsersSynced).To(Equal(4))
			Expect(summary.TemplatesSynced).To(Equal(2))
		})

		It("should forward the device filter and window from the body", func() {
			body, _ := json.Marshal(map[string]interface{}{
				"device":     "Main Entrance",
				"start_time": 1718000000,
				"end_time":   1718086400,
			})
			req := httptest.NewRequest(http.MethodPost, "/sync/users", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.TriggerPush(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			opts := engine.pushOpts[0]
			Expect(opts.DeviceName).To(Equal("Main Entrance"))
			Expect(opts.Window).NotTo(BeNil())
			Expect(opts.Window.Start.Unix()).To(Equal(int64(1718000000)))
			Expect(opts.Window.End.Unix()).To(Equal(int64(1718086400)))
		})

		It("should allow an open-ended window", func() {
			body, _ := json.Marshal(map[string]interface{}{"start_time": 1718000000})
			req := httptest.NewRequest(http.MethodPost, "/sync/users", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.TriggerPush(rec, req)

			window := engine.pushOpts[0].Window
			Expect(window.Start.Unix()).To(Equal(int64(1718000000)))
			Expect(window.End).To(BeNil())
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync/users", bytes.NewReader([]byte("{nope")))
			rec := httptest.NewRecorder()

			handler.TriggerPush(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(engine.pushOpts).To(BeEmpty())
		})

		It("should surface a flow failure as an error response", func() {
			engine.pushErr = errors.New("registry unavailable")
			req := httptest.NewRequest(http.MethodPost, "/sync/users", nil)
			rec := httptest.NewRecorder()

			handler.TriggerPush(rec, req)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("TriggerPull", func() {
		It("should run the pull flow and return the summary", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync/logs", nil)
			rec := httptest.NewRecorder()

			handler.TriggerPull(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var summary syncengine.PullSummary
			Expect(json.Unmarshal(rec.Body.Bytes(), &summary)).To(Succeed())
			Expect(summary.LogsSaved).To(Equal(7))
		})

		It("should forward the device filter", func() {
			body, _ := json.Marshal(map[string]string{"device": "Server Room"})
			req := httptest.NewRequest(http.MethodPost, "/sync/logs", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.TriggerPull(rec, req)

			Expect(engine.pullOpts).To(HaveLen(1))
			Expect(engine.pullOpts[0].DeviceName).To(Equal("Server Room"))
		})

		It("should surface a flow failure as an error response", func() {
			engine.pullErr = errors.New("registry unavailable")
			req := httptest.NewRequest(http.MethodPost, "/sync/logs", nil)
			rec := httptest.NewRecorder()

			handler.TriggerPull(rec, req)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
