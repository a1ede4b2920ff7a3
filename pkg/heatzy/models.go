package heatzy

import (
	"fmt"
	"time"
)

// LoginCredentials is the body of POST /login
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login.
// The token is the only value worth persisting; the library never stores it.
type AuthResponse struct {
	Token    string `json:"token"`
	UID      string `json:"uid"`
	ExpireAt int64  `json:"expire_at"` // Unix seconds
}

// ExpiresAt returns ExpireAt as a time.Time
func (a *AuthResponse) ExpiresAt() time.Time {
	return time.Unix(a.ExpireAt, 0)
}

// Device is a heater bound to the user account.
type Device struct {
	DID         string  `json:"did"`       // Opaque device identifier
	DevAlias    *string `json:"dev_alias"` // User-assigned name; absent on GET /devices/{id}
	ProductName string  `json:"product_name"`
	MAC         string  `json:"mac"`
	IsOnline    bool    `json:"is_online"`
}

// Alias returns the user-assigned name, or "" when the API did not send one.
func (d *Device) Alias() string {
	if d.DevAlias == nil {
		return ""
	}
	return *d.DevAlias
}

// DisplayName returns the alias, or "(no name)" when the device has none
func (d *Device) DisplayName() string {
	if name := d.Alias(); name != "" {
		return name
	}
	return "(no name)"
}

// String returns a one-line summary of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s [%s] %s", d.DisplayName(), d.DID, d.ProductName)
}

// devicesResponse is the body of GET /bindings
type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// deviceDataResponse is the body of GET /devdata/{id}/latest
type deviceDataResponse struct {
	Attr deviceAttributes `json:"attr"`
}

type deviceAttributes struct {
	Mode ModeValue `json:"mode"`
}

// controlRequest is the body of POST /control/{id}
type controlRequest struct {
	Attrs controlAttributes `json:"attrs"`
}

type controlAttributes struct {
	Mode int `json:"mode"`
}
