package heatzy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Gizwits application API used by Heatzy
	DefaultBaseURL = "https://euapi.gizwits.com/app"

	// ApplicationID identifies the Heatzy application to the Gizwits cloud
	ApplicationID = "c70a66ff039d41b4a220e198b0fcc8b3"

	// ApplicationIDHeader carries ApplicationID on every request
	ApplicationIDHeader = "X-Gizwits-Application-Id"

	// UserTokenHeader carries the session token on authenticated requests
	UserTokenHeader = "X-Gizwits-User-token"

	// DefaultTimeout is the overall timeout applied to every request
	DefaultTimeout = 30 * time.Second

	// BindingsPageSize is the number of bindings requested by ListDevices.
	// Only the first page is fetched.
	BindingsPageSize = 100
)

// Client talks to the Heatzy cloud API.
//
// A Client starts unauthenticated. Install a token with SetToken, or log in
// with Connect, before calling any device operation. A Client is meant to be
// used by one goroutine at a time; separate Clients share no state.
type Client struct {
	// BaseURL is the API root without a trailing slash
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent when non-empty
	UserAgent string

	token  string
	logger *zap.Logger
}

// NewClient creates a client for the production Heatzy API
func NewClient() *Client {
	return NewClientWithURL(DefaultBaseURL)
}

// NewClientWithURL creates a client against another base URL (tests, proxies)
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger used for request tracing. nil restores the silent logger.
func (c *Client) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

// SetToken installs the session token. It performs no I/O.
func (c *Client) SetToken(token string) {
	c.logger.Debug("Setting token manually")
	c.token = token
}

// Token returns the installed token, or "" when unauthenticated
func (c *Client) Token() string {
	return c.token
}

// IsAuthenticated reports whether a token is installed
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// Login exchanges credentials for a token. It does not modify the client;
// pass the returned token to SetToken, or use Connect.
func (c *Client) Login(username, password string) (*AuthResponse, error) {
	c.logger.Info("Logging in to Heatzy API")

	body, err := json.Marshal(LoginCredentials{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	c.logger.Debug("Sending login request")
	resp, err := c.do(http.MethodPost, "/login", body, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return nil, NewAuthError(resp.StatusCode, readErrorBody(resp))
	}

	var auth AuthResponse
	if err := decodeBody(resp, "decode login response", &auth); err != nil {
		return nil, err
	}

	c.logger.Info("Successfully authenticated")
	c.logger.Debug("Token expiry", zap.Int64("expire_at", auth.ExpireAt))
	return &auth, nil
}

// Connect logs in and installs the resulting token
func (c *Client) Connect(username, password string) error {
	auth, err := c.Login(username, password)
	if err != nil {
		return err
	}
	c.SetToken(auth.Token)
	return nil
}

// ListDevices returns the devices bound to the account, in API order.
// Only the first BindingsPageSize bindings are returned.
func (c *Client) ListDevices() ([]Device, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	c.logger.Info("Listing devices")

	path := fmt.Sprintf("/bindings?limit=%d&skip=0", BindingsPageSize)
	resp, err := c.do(http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return nil, NewAPIError("list devices", resp.StatusCode, readErrorBody(resp))
	}

	var listing devicesResponse
	if err := decodeBody(resp, "decode device list", &listing); err != nil {
		return nil, err
	}

	c.logger.Info("Found devices", zap.Int("count", len(listing.Devices)))
	for _, device := range listing.Devices {
		c.logger.Debug("Device",
			zap.String("alias", device.Alias()),
			zap.String("did", device.DID),
		)
	}
	if len(listing.Devices) >= BindingsPageSize {
		c.logger.Warn("Device listing is capped; further devices are not returned",
			zap.Int("limit", BindingsPageSize))
	}

	return listing.Devices, nil
}

// GetDeviceByName returns the first device whose alias equals name exactly
func (c *Client) GetDeviceByName(name string) (*Device, error) {
	c.logger.Info("Looking for device by name", zap.String("name", name))

	devices, err := c.ListDevices()
	if err != nil {
		return nil, err
	}

	device, ok := lo.Find(devices, func(d Device) bool {
		return d.DevAlias != nil && *d.DevAlias == name
	})
	if !ok {
		return nil, NewNotFoundError(fmt.Sprintf("device with name '%s' not found", name))
	}
	c.logger.Debug("Matched device", zap.Stringer("device", &device))
	return &device, nil
}

// GetDevice fetches a single device. The API omits dev_alias on this endpoint.
func (c *Client) GetDevice(deviceID string) (*Device, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	c.logger.Info("Getting device info", zap.String("did", deviceID))

	resp, err := c.do(http.MethodGet, "/devices/"+deviceID, nil, true)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkDeviceResponse(resp, deviceID, "get device"); err != nil {
		return nil, err
	}

	var device Device
	if err := decodeBody(resp, "decode device", &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// GetDeviceMode reads the current mode from the device's latest data
func (c *Client) GetDeviceMode(deviceID string) (DeviceMode, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return 0, err
	}
	c.logger.Info("Getting mode for device", zap.String("did", deviceID))

	resp, err := c.do(http.MethodGet, "/devdata/"+deviceID+"/latest", nil, true)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkDeviceResponse(resp, deviceID, "get device data"); err != nil {
		return 0, err
	}

	var data deviceDataResponse
	if err := decodeBody(resp, "decode device data", &data); err != nil {
		return 0, err
	}

	c.logger.Debug("Raw mode value",
		zap.ByteString("raw", data.Attr.Mode.Raw),
		zap.Stringer("kind", data.Attr.Mode.Kind),
	)

	mode, err := data.Attr.Mode.Decode()
	if err != nil {
		return 0, err
	}

	c.logger.Info("Device mode", zap.Stringer("mode", mode))
	return mode, nil
}

// SetDeviceMode sends a control command switching the device to mode
func (c *Client) SetDeviceMode(deviceID string, mode DeviceMode) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	if !mode.Valid() {
		return NewInvalidModeError(fmt.Sprint(int(mode)), fmt.Sprintf("%s is not a settable mode", mode), CLIModeNames())
	}
	c.logger.Info("Setting device mode",
		zap.String("did", deviceID),
		zap.Stringer("mode", mode),
	)

	body, err := json.Marshal(controlRequest{Attrs: controlAttributes{Mode: mode.Int()}})
	if err != nil {
		return fmt.Errorf("failed to encode control request: %w", err)
	}

	c.logger.Debug("Sending control request", zap.Int("mode", mode.Int()))
	resp, err := c.do(http.MethodPost, "/control/"+deviceID, body, true)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkDeviceResponse(resp, deviceID, "control device"); err != nil {
		return err
	}

	c.logger.Info("Successfully set device mode")
	return nil
}

// ensureAuthenticated fails with ErrNoToken before any I/O
func (c *Client) ensureAuthenticated() error {
	if c.token == "" {
		return ErrNoToken
	}
	return nil
}

// do builds and sends a single request. Transport failures become Network errors.
func (c *Client) do(method, path string, body []byte, authenticated bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}

	req.Header.Set(ApplicationIDHeader, ApplicationID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if authenticated {
		if c.token == "" {
			return nil, ErrNoToken
		}
		req.Header.Set(UserTokenHeader, c.token)
	}

	c.logger.Debug("HTTP request", zap.String("method", method), zap.String("path", path))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}

	c.logger.Debug("HTTP response", zap.String("path", path), zap.Int("status_code", resp.StatusCode))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// checkDeviceResponse maps 404 to NotFound and other non-2xx statuses to API errors
func checkDeviceResponse(resp *http.Response, deviceID, operation string) error {
	if resp.StatusCode == http.StatusNotFound {
		return NewNotFoundError(fmt.Sprintf("device '%s' not found", deviceID))
	}
	if !isSuccess(resp.StatusCode) {
		return NewAPIError(operation, resp.StatusCode, readErrorBody(resp))
	}
	return nil
}

// readErrorBody returns the response text for error reporting
func readErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "Unknown error"
	}
	return strings.TrimSpace(string(data))
}

// decodeBody parses a 2xx JSON body. Unreadable or malformed bodies are API errors.
func decodeBody(resp *http.Response, operation string, v any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		apiErr := NewAPIError(operation, resp.StatusCode, strings.TrimSpace(string(data)))
		apiErr.Err = err
		return apiErr
	}
	return nil
}
