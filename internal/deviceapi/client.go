package deviceapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/access-bridge/internal/facetemplate"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	"github.com/frahmantamala/access-bridge/internal/user"
)

const (
	enrollValidityDays = 365
	validityLayout     = "20060102 150405"

	defaultTimeout    = 10 * time.Second
	defaultMaxRecords = 100
)

type Config struct {
	// OverrideHost, when set, replaces every terminal's own address. Used
	// against simulators.
	OverrideHost       string
	Timeout            time.Duration
	MaxRecordsPerFetch int
}

// Client speaks the terminal's CGI protocol over HTTP with basic auth. One
// client is bound to one terminal for the duration of a flow. Device calls
// report failure as a boolean or an empty result; transport errors never
// escape this boundary.
type Client struct {
	name       string
	terminalID string
	baseURL    string
	username   string
	password   string
	maxRecords int
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func NewClient(term *terminal.Terminal, cfg Config, logger *slog.Logger) *Client {
	host := term.Address
	if cfg.OverrideHost != "" {
		host = cfg.OverrideHost
	}
	port := term.Port
	if port == "" {
		port = "80"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRecords := cfg.MaxRecordsPerFetch
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	return &Client{
		name:       term.Name,
		terminalID: term.TerminalID,
		baseURL:    fmt.Sprintf("http://%s:%s", host, port),
		username:   term.Username,
		password:   term.Password,
		maxRecords: maxRecords,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) TerminalID() string {
	return c.terminalID
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// EnrollUser upserts a card record on the device. The request encodes list
// fields as repeated indexed keys (Doors[0]=..., Doors[1]=...) and scalars
// as plain key=value, which is what the device CGI expects.
func (c *Client) EnrollUser(u *user.CanonicalUser) bool {
	now := c.now()

	var q strings.Builder
	q.WriteString("action=insert&name=AccessControlCard")
	writeField(&q, "CardName", u.Name)
	writeField(&q, "CardNo", u.CardNumber)
	writeField(&q, "UserID", u.ID)
	writeField(&q, "CardStatus", "0")
	writeField(&q, "CardType", "0")
	writeField(&q, "Password", "")
	writeListField(&q, "Doors", []string{"1"})
	writeListField(&q, "TimeSections", []string{"1"})
	writeField(&q, "ValidDateStart", now.Format(validityLayout))
	writeField(&q, "ValidDateEnd", now.AddDate(0, 0, enrollValidityDays).Format(validityLayout))

	requestURL := c.baseURL + "/cgi-bin/recordUpdater.cgi?" + q.String()
	if _, err := c.get(requestURL); err != nil {
		c.logger.Warn("user enrollment failed",
			"device", c.name, "user_id", u.ID, "role", u.Role, "error", err)
		return false
	}

	c.logger.Debug("user enrolled", "device", c.name, "user_id", u.ID, "role", u.Role)
	return true
}

type faceEnrollInfo struct {
	UserName  string   `json:"UserName"`
	FaceData  []string `json:"FaceData"`
	PhotoData []string `json:"PhotoData"`
}

type faceEnrollRequest struct {
	UserID string         `json:"UserID"`
	Info   faceEnrollInfo `json:"Info"`
}

// EnrollFaceTemplate pushes a face template to the device. The two list
// fields are present but empty when the template carries no corresponding
// payload.
func (c *Client) EnrollFaceTemplate(t *facetemplate.FaceTemplate) bool {
	payload := faceEnrollRequest{
		UserID: t.UserID,
		Info: faceEnrollInfo{
			UserName:  t.UserName,
			FaceData:  []string{},
			PhotoData: []string{},
		},
	}
	if t.FaceData != "" {
		payload.Info.FaceData = []string{t.FaceData}
	}
	if t.PhotoData != "" {
		payload.Info.PhotoData = []string{t.PhotoData}
	}

	requestURL := c.baseURL + "/cgi-bin/FaceInfoManager.cgi?action=add"
	if err := c.postJSON(requestURL, payload); err != nil {
		c.logger.Warn("face template enrollment failed",
			"device", c.name, "user_id", t.UserID, "role", t.Role, "error", err)
		return false
	}

	c.logger.Debug("face template enrolled",
		"device", c.name, "user_id", t.UserID, "role", t.Role)
	return true
}

// FetchOfflineLogs asks the device for up to the configured maximum number
// of access records, optionally bounded by start/end instants (epoch
// seconds on the wire). A failed call yields an empty list, not an error.
func (c *Client) FetchOfflineLogs(start, end *time.Time) []Record {
	var q strings.Builder
	q.WriteString("action=find&name=AccessControlCardRec")
	q.WriteString("&count=" + strconv.Itoa(c.maxRecords))
	if start != nil {
		q.WriteString("&StartTime=" + strconv.FormatInt(start.Unix(), 10))
	}
	if end != nil {
		q.WriteString("&EndTime=" + strconv.FormatInt(end.Unix(), 10))
	}

	requestURL := c.baseURL + "/cgi-bin/recordFinder.cgi?" + q.String()
	body, err := c.get(requestURL)
	if err != nil {
		c.logger.Warn("log fetch failed", "device", c.name, "error", err)
		return []Record{}
	}

	records := ParseRecordList(body)
	c.logger.Debug("fetched offline logs", "device", c.name, "records", len(records))
	return records
}

// Ping checks that the device answers HTTP at all. Any response counts;
// terminals commonly reject unauthenticated root requests but a status line
// still proves the device is reachable.
func (c *Client) Ping() error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("device returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) postJSON(rawURL string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("device returned status %d", resp.StatusCode)
	}
	return nil
}

func writeField(q *strings.Builder, key, value string) {
	q.WriteString("&" + key + "=" + url.QueryEscape(value))
}

func writeListField(q *strings.Builder, key string, values []string) {
	for i, v := range values {
		q.WriteString("&" + key + "[" + strconv.Itoa(i) + "]=" + url.QueryEscape(v))
	}
}
