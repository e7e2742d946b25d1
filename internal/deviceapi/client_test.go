package deviceapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/access-bridge/internal/deviceapi"
	"github.com/frahmantamala/access-bridge/internal/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"github.com/frahmantamala/access-bridge/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *deviceapi.Client
		logger   *slog.Logger
		requests []*http.Request
		bodies   []string
		respBody string
		respCode int
	)

	newClient := func() *deviceapi.Client {
		host, port, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
		Expect(err).NotTo(HaveOccurred())

		term := &terminal.Terminal{
			Name:       "Main Entrance",
			TerminalID: "1001",
			Address:    host,
			Port:       port,
			Username:   "admin",
			Password:   "secret",
		}
		return deviceapi.NewClient(term, deviceapi.Config{
			Timeout:            2 * time.Second,
			MaxRecordsPerFetch: 50,
		}, logger)
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		requests = nil
		bodies = nil
		respBody = "OK"
		respCode = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			requests = append(requests, r.Clone(r.Context()))
			bodies = append(bodies, string(body))
			w.WriteHeader(respCode)
			io.WriteString(w, respBody)
		}))
		client = newClient()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("EnrollUser", func() {
		canonical := &user.CanonicalUser{
			ID:         "U2002001",
			Name:       "Alice Smith",
			Role:       user.RoleStudent,
			CardNumber: "U2002001",
		}

		It("should send the card upsert query to the record updater endpoint", func() {
			ok := client.EnrollUser(canonical)
			Expect(ok).To(BeTrue())
			Expect(requests).To(HaveLen(1))

			req := requests[0]
			Expect(req.URL.Path).To(Equal("/cgi-bin/recordUpdater.cgi"))
			query := req.URL.RawQuery
			Expect(query).To(ContainSubstring("action=insert"))
			Expect(query).To(ContainSubstring("name=AccessControlCard"))
			Expect(query).To(ContainSubstring("CardNo=U2002001"))
			Expect(query).To(ContainSubstring("UserID=U2002001"))
			Expect(query).To(ContainSubstring("CardName=Alice+Smith"))
			Expect(query).To(ContainSubstring("Doors[0]=1"))
			Expect(query).To(ContainSubstring("TimeSections[0]=1"))
			Expect(query).To(ContainSubstring("ValidDateStart="))
			Expect(query).To(ContainSubstring("ValidDateEnd="))
		})

		It("should authenticate with the terminal's credentials", func() {
			client.EnrollUser(canonical)

			username, password, ok := requests[0].BasicAuth()
			Expect(ok).To(BeTrue())
			Expect(username).To(Equal("admin"))
			Expect(password).To(Equal("secret"))
		})

		It("should return false when the device rejects the request", func() {
			respCode = http.StatusInternalServerError
			Expect(client.EnrollUser(canonical)).To(BeFalse())
		})

		It("should return false when the device is unreachable", func() {
			server.Close()
			Expect(client.EnrollUser(canonical)).To(BeFalse())
		})
	})

	Describe("EnrollFaceTemplate", func() {
		template := &facetemplate.FaceTemplate{
			UserID:    "U2002001",
			Role:      user.RoleStudent,
			UserName:  "Alice Smith",
			PhotoData: "cGhvdG8=",
		}

		It("should post the template as JSON to the face manager endpoint", func() {
			ok := client.EnrollFaceTemplate(template)
			Expect(ok).To(BeTrue())
			Expect(requests).To(HaveLen(1))

			req := requests[0]
			Expect(req.Method).To(Equal(http.MethodPost))
			Expect(req.URL.Path).To(Equal("/cgi-bin/FaceInfoManager.cgi"))
			Expect(req.URL.RawQuery).To(Equal("action=add"))
			Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))

			var payload struct {
				UserID string `json:"UserID"`
				Info   struct {
					UserName  string   `json:"UserName"`
					FaceData  []string `json:"FaceData"`
					PhotoData []string `json:"PhotoData"`
				} `json:"Info"`
			}
			Expect(json.Unmarshal([]byte(bodies[0]), &payload)).To(Succeed())
			Expect(payload.UserID).To(Equal("U2002001"))
			Expect(payload.Info.UserName).To(Equal("Alice Smith"))
			Expect(payload.Info.PhotoData).To(Equal([]string{"cGhvdG8="}))
			Expect(payload.Info.FaceData).To(BeEmpty())
			Expect(payload.Info.FaceData).NotTo(BeNil())
		})

		It("should return false when the device rejects the template", func() {
			respCode = http.StatusBadRequest
			Expect(client.EnrollFaceTemplate(template)).To(BeFalse())
		})
	})

	Describe("FetchOfflineLogs", func() {
		It("should request records bounded by the window in epoch seconds", func() {
			respBody = "records[0].CardNo=1001\nrecords[0].Type=Entry\n"

			start := time.Unix(1718000000, 0)
			end := time.Unix(1718003600, 0)
			records := client.FetchOfflineLogs(&start, &end)
			Expect(records).To(HaveLen(1))
			Expect(records[0]["CardNo"]).To(Equal("1001"))

			req := requests[0]
			Expect(req.URL.Path).To(Equal("/cgi-bin/recordFinder.cgi"))
			query := req.URL.Query()
			Expect(query.Get("action")).To(Equal("find"))
			Expect(query.Get("name")).To(Equal("AccessControlCardRec"))
			Expect(query.Get("count")).To(Equal("50"))
			Expect(query.Get("StartTime")).To(Equal("1718000000"))
			Expect(query.Get("EndTime")).To(Equal("1718003600"))
		})

		It("should omit window parameters when no bounds are given", func() {
			respBody = ""
			client.FetchOfflineLogs(nil, nil)

			query := requests[0].URL.Query()
			Expect(query.Has("StartTime")).To(BeFalse())
			Expect(query.Has("EndTime")).To(BeFalse())
		})

		It("should return an empty list when the device is unreachable", func() {
			server.Close()
			records := client.FetchOfflineLogs(nil, nil)
			Expect(records).To(BeEmpty())
			Expect(records).NotTo(BeNil())
		})

		It("should return an empty list on a non-200 response", func() {
			respCode = http.StatusUnauthorized
			Expect(client.FetchOfflineLogs(nil, nil)).To(BeEmpty())
		})
	})

	Describe("Ping", func() {
		It("should succeed when the device answers", func() {
			Expect(client.Ping()).To(Succeed())
			Expect(requests[0].URL.Path).To(Equal("/"))
		})

		It("should treat any HTTP response as reachable", func() {
			respCode = http.StatusUnauthorized
			Expect(client.Ping()).To(Succeed())
		})

		It("should fail when the device is unreachable", func() {
			server.Close()
			Expect(client.Ping()).To(HaveOccurred())
		})
	})

	Describe("NewClient", func() {
		It("should route through the override host when configured", func() {
			host, port, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
			Expect(err).NotTo(HaveOccurred())

			term := &terminal.Terminal{
				Name:       "Main Entrance",
				TerminalID: "1001",
				Address:    "192.168.1.201",
				Port:       port,
			}
			overridden := deviceapi.NewClient(term, deviceapi.Config{OverrideHost: host}, logger)
			Expect(overridden.BaseURL()).To(Equal("http://" + host + ":" + port))
		})

		It("should default the port to 80", func() {
			term := &terminal.Terminal{Name: "Main Entrance", Address: "192.168.1.201"}
			c := deviceapi.NewClient(term, deviceapi.Config{}, logger)
			Expect(c.BaseURL()).To(Equal("http://192.168.1.201:80"))
		})
	})
})
