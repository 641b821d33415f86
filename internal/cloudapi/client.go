// Package cloudapi is the HTTP client for the vendor cloud: login,
// family/device discovery, bulk state queries, and parameter control. It
// is grounded on the teacher's internal/cloud/client.go (a struct holding
// a configured transport plus connection state, with one method per
// directive), adapted from gRPC to the vendor's plain HTTPS+JSON API.
package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"climatehub.dev/hub/internal/clock"
	"climatehub.dev/hub/internal/errors"
	"climatehub.dev/hub/internal/logging"
	"climatehub.dev/hub/internal/metrics"
	"climatehub.dev/hub/internal/protocol"
	"github.com/google/uuid"
)

// requestTimeout bounds every single HTTP round trip to the cloud.
const requestTimeout = 30 * time.Second

// Client is the cloud API client for one account session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	region     protocol.Region
	logger     *logging.Logger
	metrics    *metrics.Collector
	clock      clock.Clock

	mu        sync.RWMutex
	authToken string
	userID    string
}

// New builds a Client for the given region. A nil logger defaults to
// logging.Default(); a nil clock defaults to the real wall clock.
func New(region protocol.Region, logger *logging.Logger, m *metrics.Collector, clk clock.Clock) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    protocol.APIBaseURL(region),
		region:     region,
		logger:     logger.WithComponent("cloudapi"),
		metrics:    m,
		clock:      clk,
	}
}

// Login authenticates with email/password and retains the session token
// for subsequent requests. Unlike every other directive, the login body
// is not itself a JSON envelope: the entire plaintext payload is
// AES-encrypted and posted as raw bytes, with the timestamp and a digest
// token carried as separate headers.
func (c *Client) Login(ctx context.Context, email, password string) error {
	req, err := protocol.BuildLoginRequest(email, password, c.clock.Now().Unix())
	if err != nil {
		return errors.Wrap(err, errors.KindAuthentication, "cloudapi: build login request")
	}

	respBody, err := c.postRaw(ctx, "/account/login", req.Body, req.Timestamp, req.Token)
	if err != nil {
		return errors.Wrap(err, errors.KindAuthentication, "cloudapi: login request")
	}

	payload, err := protocol.UnwrapEventPayload(respBody)
	if err != nil {
		return errors.Wrap(err, errors.KindAuthentication, "cloudapi: decode login response")
	}

	var lp loginResponsePayload
	if err := json.Unmarshal(payload, &lp); err != nil {
		return errors.Wrap(err, errors.KindAuthentication, "cloudapi: decode login payload")
	}
	if lp.Token == "" {
		return errors.New(errors.KindAuthentication, "cloudapi: login succeeded without a token")
	}

	c.mu.Lock()
	c.authToken = lp.Token
	c.userID = lp.UserID
	c.mu.Unlock()
	c.logger.Info("login succeeded", "email", email, "region", c.region)
	return nil
}

// SessionToken returns the token captured by the most recent successful
// Login, or "" if no session has been established yet.
func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// UserID returns the vendor account id captured by the most recent
// successful Login, or "" if no session has been established yet.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// GetFamilies returns every family (home) on the logged-in account.
func (c *Client) GetFamilies(ctx context.Context) ([]Family, error) {
	body, err := protocol.BuildFamiliesRequest(c.UserID(), c.clock.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: build families request")
	}
	respBody, err := c.post(ctx, "/appsync/group/member/getfamilylist", body)
	if err != nil {
		return nil, err
	}
	payload, err := protocol.UnwrapEventPayload(respBody)
	if err != nil {
		return nil, err
	}
	var fp familiesResponsePayload
	if err := json.Unmarshal(payload, &fp); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "cloudapi: decode families payload")
	}
	return fp.Families, nil
}

// GetDevices returns every endpoint belonging to familyID, including any
// shared in from another account.
func (c *Client) GetDevices(ctx context.Context, familyID string) ([]Device, error) {
	body, err := protocol.BuildDevicesRequest(c.UserID(), familyID, c.clock.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: build devices request")
	}
	respBody, err := c.post(ctx, "/appsync/group/dev/query", body)
	if err != nil {
		return nil, err
	}
	payload, err := protocol.UnwrapEventPayload(respBody)
	if err != nil {
		return nil, err
	}
	var dp devicesResponsePayload
	if err := json.Unmarshal(payload, &dp); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "cloudapi: decode devices payload")
	}
	return append(dp.Devices, dp.SharedFromOther...), nil
}

// BulkQueryState fetches the online/offline status of every device in
// devices in a single round trip.
func (c *Client) BulkQueryState(ctx context.Context, devices []protocol.DeviceRef) ([]protocol.DeviceState, error) {
	body, err := protocol.BuildQueryStateRequest(c.UserID(), devices, c.clock.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: build query state request")
	}
	respBody, err := c.post(ctx, "/device/control/v2/querystate", body)
	if err != nil {
		return nil, err
	}
	return protocol.ParseStateResponse(respBody)
}

// GetParams fetches the current value of params for a single endpoint,
// used by a device's monitor loop rather than the bulk state query, which
// only reports online/offline and is reserved for discovery.
func (c *Client) GetParams(ctx context.Context, dev protocol.DeviceRef, params []string) (map[string]int, error) {
	body, err := protocol.BuildGetParamsRequest(dev, params, c.clock.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: build get params request")
	}
	respBody, err := c.postControl(ctx, body)
	if err != nil {
		return nil, err
	}
	return protocol.ParseGetParamsResponse(respBody)
}

// SetParams sets one or more parameters on a single endpoint.
func (c *Client) SetParams(ctx context.Context, dev protocol.DeviceRef, params map[string]int) error {
	body, err := protocol.BuildControlRequest(dev, params, c.clock.Now().Unix())
	if err != nil {
		return errors.Wrap(err, errors.KindInvalidParameter, "cloudapi: build control request")
	}
	respBody, err := c.postControl(ctx, body)
	if err != nil {
		return err
	}
	return protocol.ParseControlResponse(respBody)
}

// postControl issues a key-value control directive against the shared
// sdkcontrol endpoint, which both get and set requests use and which
// requires the account license as a query parameter.
func (c *Client) postControl(ctx context.Context, body []byte) ([]byte, error) {
	return c.post(ctx, "/device/control/v2/sdkcontrol?license="+protocol.License, body)
}

// post issues an authenticated POST to path relative to the region's base
// URL, applying the vendor's spoofed header set.
func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return c.postRaw(ctx, path, body, "", "")
}

// postRaw is post's underlying implementation; timestamp and token, when
// non-empty, are set as the headers login uses in place of the regular
// auth token.
func (c *Client) postRaw(ctx context.Context, path string, body []byte, timestamp, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: build http request")
	}
	c.applyHeaders(req, timestamp, token)

	requestID := uuid.NewString()
	c.logger.Debug("cloud request", "request_id", requestID, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, fmt.Sprintf("cloudapi: request %s", path))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindClimateHub, "cloudapi: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithAttr(
			errors.New(errors.KindClimateHub, fmt.Sprintf("cloudapi: unexpected status %d", resp.StatusCode)),
			"path", path,
		)
	}
	return respBody, nil
}

func (c *Client) applyHeaders(req *http.Request, timestamp, token string) {
	req.Header.Set("Content-Type", "application/x-java-serialized-object")
	req.Header.Set("licenseId", protocol.LicenseID)
	req.Header.Set("lid", protocol.LicenseID)
	req.Header.Set("language", "en")
	req.Header.Set("appVersion", protocol.SpoofAppVersion)
	req.Header.Set("User-Agent", protocol.SpoofUserAgent)
	req.Header.Set("system", protocol.SpoofSystem)
	req.Header.Set("appPlatform", protocol.SpoofPlatform)

	if timestamp != "" {
		req.Header.Set("timestamp", timestamp)
	}
	if token != "" {
		req.Header.Set("token", token)
	}

	c.mu.RLock()
	authToken := c.authToken
	userID := c.userID
	c.mu.RUnlock()
	if authToken != "" {
		req.Header.Set("loginsession", authToken)
	}
	if userID != "" {
		req.Header.Set("userid", userID)
	}
}
