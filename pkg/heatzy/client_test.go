package heatzy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const mockBindingsResponse = `{"devices":[
	{"did":"d1","dev_alias":"Kitchen","product_name":"Pilote_SoC","mac":"aa:bb:cc:00:00:01","is_online":true},
	{"did":"d2","dev_alias":"Bath","product_name":"Heatzy Pilote","mac":"aa:bb:cc:00:00:02","is_online":false}
]}`

// newTestServer returns a server backed by handler and a counter of requests it received
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func authedClient(url string) *Client {
	client := NewClientWithURL(url)
	client.SetToken("abc")
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", client.BaseURL, DefaultBaseURL)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}
	if client.HTTPClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", client.HTTPClient.Timeout)
	}
	if client.IsAuthenticated() {
		t.Error("new client should not be authenticated")
	}
}

func TestNewClientWithURL_TrimsSlash(t *testing.T) {
	client := NewClientWithURL("http://localhost:8080/app/")
	if client.BaseURL != "http://localhost:8080/app" {
		t.Errorf("BaseURL = %s, want http://localhost:8080/app", client.BaseURL)
	}
}

func TestLogin_Success(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("request = %s %s, want POST /login", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", got)
		}
		if got := r.Header.Get(ApplicationIDHeader); got != ApplicationID {
			t.Errorf("%s = %s, want %s", ApplicationIDHeader, got, ApplicationID)
		}
		if got := r.Header.Get(UserTokenHeader); got != "" {
			t.Errorf("login should not carry a user token, got %s", got)
		}

		var creds LoginCredentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if creds.Username != "user@example.com" || creds.Password != "secret" {
			t.Errorf("credentials = %+v", creds)
		}
		_, _ = io.WriteString(w, `{"token":"abc","uid":"u1","expire_at":123}`)
	})

	client := NewClientWithURL(server.URL)
	auth, err := client.Login("user@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if auth.Token != "abc" || auth.UID != "u1" || auth.ExpireAt != 123 {
		t.Errorf("Login() = %+v, want {abc u1 123}", auth)
	}
	if !auth.ExpiresAt().Equal(time.Unix(123, 0)) {
		t.Errorf("ExpiresAt() = %v", auth.ExpiresAt())
	}
	if client.IsAuthenticated() {
		t.Error("Login() must not install the token")
	}
}

func TestLogin_Failure(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error_message":"incorrect password"}`)
	})

	client := NewClientWithURL(server.URL)
	_, err := client.Login("user@example.com", "wrong")

	if !IsAuthError(err) {
		t.Fatalf("Login() error = %v, want auth error", err)
	}
	herr := err.(*Error)
	if herr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", herr.StatusCode)
	}
	if !strings.Contains(err.Error(), "incorrect password") {
		t.Errorf("error %q should carry the response body", err.Error())
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error %q should carry the status", err.Error())
	}
}

func TestConnect_ThenListDevicesSendsToken(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_, _ = io.WriteString(w, `{"token":"abc","uid":"u1","expire_at":123}`)
		case "/bindings":
			if got := r.Header.Get("X-Gizwits-User-token"); got != "abc" {
				t.Errorf("X-Gizwits-User-token = %q, want abc", got)
			}
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("Authorization = %q, want empty", got)
			}
			if got := r.URL.Query().Get("limit"); got != "100" {
				t.Errorf("limit = %s, want 100", got)
			}
			if got := r.URL.Query().Get("skip"); got != "0" {
				t.Errorf("skip = %s, want 0", got)
			}
			_, _ = io.WriteString(w, mockBindingsResponse)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	client := NewClientWithURL(server.URL)
	if err := client.Connect("user@example.com", "secret"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !client.IsAuthenticated() || client.Token() != "abc" {
		t.Fatalf("Token() = %q, want abc", client.Token())
	}

	devices, err := client.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Alias() != "Kitchen" || devices[0].DID != "d1" || !devices[0].IsOnline {
		t.Errorf("devices[0] = %+v", devices[0])
	}
	if devices[1].MAC != "aa:bb:cc:00:00:02" || devices[1].IsOnline {
		t.Errorf("devices[1] = %+v", devices[1])
	}
}

func TestConnect_FailureKeepsUnauthenticated(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := NewClientWithURL(server.URL)
	if err := client.Connect("u", "p"); !IsAuthError(err) {
		t.Fatalf("Connect() error = %v, want auth error", err)
	}
	if client.IsAuthenticated() {
		t.Error("failed Connect() must not install a token")
	}
}

func TestNoToken_NoNetworkCalls(t *testing.T) {
	server, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	})

	client := NewClientWithURL(server.URL)

	ops := map[string]func() error{
		"ListDevices": func() error { _, err := client.ListDevices(); return err },
		"GetDeviceByName": func() error {
			_, err := client.GetDeviceByName("Kitchen")
			return err
		},
		"GetDevice":     func() error { _, err := client.GetDevice("d1"); return err },
		"GetDeviceMode": func() error { _, err := client.GetDeviceMode("d1"); return err },
		"SetDeviceMode": func() error { return client.SetDeviceMode("d1", ModeEco) },
	}

	for name, op := range ops {
		err := op()
		if !errors.Is(err, ErrNoToken) {
			t.Errorf("%s() error = %v, want ErrNoToken", name, err)
		}
		if !IsNoTokenError(err) {
			t.Errorf("%s() IsNoTokenError = false", name)
		}
	}

	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("server received %d requests, want 0", n)
	}
}

func TestListDevices_APIError(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	_, err := authedClient(server.URL).ListDevices()
	if !IsAPIError(err) {
		t.Fatalf("ListDevices() error = %v, want API error", err)
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should carry status and body", err.Error())
	}
}

func TestListDevices_MalformedBody(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"devices":`)
	})

	_, err := authedClient(server.URL).ListDevices()
	if !IsAPIError(err) {
		t.Fatalf("ListDevices() error = %v, want API error", err)
	}
	if err.(*Error).Err == nil {
		t.Error("decode error should be wrapped")
	}
}

func TestListDevices_WarnsAtPageLimit(t *testing.T) {
	devices := make([]Device, BindingsPageSize)
	for i := range devices {
		devices[i] = Device{DID: "d"}
	}
	payload, _ := json.Marshal(devicesResponse{Devices: devices})

	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})

	core, logs := observer.New(zapcore.WarnLevel)
	client := authedClient(server.URL)
	client.SetLogger(zap.New(core))

	got, err := client.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(got) != BindingsPageSize {
		t.Errorf("len = %d, want %d", len(got), BindingsPageSize)
	}
	if logs.FilterMessageSnippet("capped").Len() != 1 {
		t.Errorf("expected one capped-listing warning, got %d logs", logs.Len())
	}
}

func TestGetDeviceByName(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, mockBindingsResponse)
	})
	client := authedClient(server.URL)

	device, err := client.GetDeviceByName("Bath")
	if err != nil {
		t.Fatalf("GetDeviceByName(Bath) error = %v", err)
	}
	if device.DID != "d2" {
		t.Errorf("DID = %s, want d2", device.DID)
	}

	_, err = client.GetDeviceByName("Garage")
	if !IsNotFoundError(err) {
		t.Fatalf("GetDeviceByName(Garage) error = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), "Garage") {
		t.Errorf("error %q should mention Garage", err.Error())
	}

	// Exact match only
	if _, err := client.GetDeviceByName("bath"); !IsNotFoundError(err) {
		t.Errorf("GetDeviceByName(bath) error = %v, want not found", err)
	}
}

func TestGetDeviceByName_FirstMatchWins(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"devices":[
			{"did":"x","product_name":"p","mac":"m","is_online":true},
			{"did":"a","dev_alias":"Dup","product_name":"p","mac":"m","is_online":true},
			{"did":"b","dev_alias":"Dup","product_name":"p","mac":"m","is_online":true}
		]}`)
	})

	device, err := authedClient(server.URL).GetDeviceByName("Dup")
	if err != nil {
		t.Fatalf("GetDeviceByName() error = %v", err)
	}
	if device.DID != "a" {
		t.Errorf("DID = %s, want a", device.DID)
	}
}

func TestGetDevice(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/devices/d1":
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			_, _ = io.WriteString(w, `{"did":"d1","product_name":"Pilote_SoC","mac":"aa","is_online":true}`)
		case "/devices/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream")
		}
	})
	client := authedClient(server.URL)

	device, err := client.GetDevice("d1")
	if err != nil {
		t.Fatalf("GetDevice(d1) error = %v", err)
	}
	if device.DevAlias != nil {
		t.Errorf("DevAlias = %v, want nil", *device.DevAlias)
	}
	if device.ProductName != "Pilote_SoC" || !device.IsOnline {
		t.Errorf("device = %+v", device)
	}

	if _, err := client.GetDevice("missing"); !IsNotFoundError(err) {
		t.Errorf("GetDevice(missing) error = %v, want not found", err)
	}

	_, err = client.GetDevice("other")
	if !IsAPIError(err) {
		t.Fatalf("GetDevice(other) error = %v, want API error", err)
	}
	if err.(*Error).StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", err.(*Error).StatusCode)
	}
}

func TestGetDeviceMode(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    DeviceMode
		checkFn func(error) bool
	}{
		{"integer", http.StatusOK, `{"attr":{"mode":1,"lock_switch":0}}`, ModeEco, nil},
		{"string", http.StatusOK, `{"attr":{"mode":"eco"}}`, ModeEco, nil},
		{"string cft1", http.StatusOK, `{"attr":{"mode":"cft1"}}`, ModeComfortMinus1, nil},
		{"boolean", http.StatusOK, `{"attr":{"mode":true}}`, 0, IsInvalidModeError},
		{"out of range", http.StatusOK, `{"attr":{"mode":7}}`, 0, IsInvalidModeError},
		{"not found", http.StatusNotFound, ``, 0, IsNotFoundError},
		{"server error", http.StatusInternalServerError, `oops`, 0, IsAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/devdata/d1/latest" {
					t.Errorf("path = %s, want /devdata/d1/latest", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			got, err := authedClient(server.URL).GetDeviceMode("d1")
			if tt.checkFn != nil {
				if !tt.checkFn(err) {
					t.Errorf("GetDeviceMode() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetDeviceMode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetDeviceMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetDeviceMode(t *testing.T) {
	var gotBody string
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/control/d1":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %s, want application/json", got)
			}
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			_, _ = io.WriteString(w, `{}`)
		case "/control/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/control/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "internal")
		}
	})
	client := authedClient(server.URL)

	if err := client.SetDeviceMode("d1", ModeFrostProtection); err != nil {
		t.Fatalf("SetDeviceMode() error = %v", err)
	}
	if gotBody != `{"attrs":{"mode":2}}` {
		t.Errorf("body = %s, want {\"attrs\":{\"mode\":2}}", gotBody)
	}

	if err := client.SetDeviceMode("missing", ModeEco); !IsNotFoundError(err) {
		t.Errorf("SetDeviceMode(missing) error = %v, want not found", err)
	}

	err := client.SetDeviceMode("broken", ModeEco)
	if !IsAPIError(err) {
		t.Fatalf("SetDeviceMode(broken) error = %v, want API error", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q should contain status 500", err.Error())
	}
}

func TestSetDeviceMode_RejectsInvalidMode(t *testing.T) {
	server, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	err := authedClient(server.URL).SetDeviceMode("d1", DeviceMode(0))
	if !IsInvalidModeError(err) {
		t.Errorf("SetDeviceMode(0) error = %v, want InvalidMode", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("invalid mode must not reach the network")
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := authedClient(url).ListDevices()
	if !IsNetworkError(err) {
		t.Fatalf("ListDevices() error = %v, want network error", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("network error should wrap the transport error")
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	client := authedClient(server.URL)
	client.HTTPClient.Timeout = 50 * time.Millisecond

	_, err := client.GetDevice("d1")
	if !IsNetworkError(err) {
		t.Fatalf("GetDevice() error = %v, want network error", err)
	}
	if err.(*Error).NetworkSubtype != NetworkErrorTimeout {
		t.Errorf("NetworkSubtype = %v, want timeout", err.(*Error).NetworkSubtype)
	}
}

func TestClientLogsOperations(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"attr":{"mode":"stop"}}`)
	})

	core, logs := observer.New(zapcore.DebugLevel)
	client := authedClient(server.URL)
	client.SetLogger(zap.New(core))

	if _, err := client.GetDeviceMode("d1"); err != nil {
		t.Fatalf("GetDeviceMode() error = %v", err)
	}

	if logs.FilterMessage("Raw mode value").Len() != 1 {
		t.Error("expected raw mode value to be logged at debug")
	}
	entries := logs.FilterMessage("Device mode").All()
	if len(entries) != 1 {
		t.Fatalf("expected one Device mode entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["mode"]; got != "stop" {
		t.Errorf("logged mode = %v, want stop", got)
	}
}
