// Package heatzy is a client for the Heatzy cloud API.
//
// Heatzy pilot-wire heaters are controlled exclusively through the Gizwits
// cloud; there is no local protocol. This package wraps the handful of REST
// endpoints needed to log in, list the devices bound to an account, read a
// device's heating mode and change it.
//
// # Usage Example
//
//	client := heatzy.NewClient()
//	if err := client.Connect("user@example.com", "password"); err != nil {
//	    log.Fatal(err)
//	}
//
//	devices, err := client.ListDevices()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Println(d.Alias(), d.DID)
//	}
//
//	if err := client.SetDeviceMode(devices[0].DID, heatzy.ModeEco); err != nil {
//	    log.Fatal(err)
//	}
//
// # Modes
//
// A DeviceMode has three external forms: the integer code sent in control
// commands (0-5), the short string some products report ("cft", "eco", ...)
// and the command-line name ("comfort", "frost-protection", ...). Each
// ModeFrom* decoder rejects anything outside the six known modes with an
// InvalidMode error.
//
// # Error Handling
//
// Every failure is an *Error whose Kind is one of Network, Auth, API,
// NotFound, InvalidMode or NoToken. Use the Is*Error predicates or errors.As.
// No request is ever retried.
package heatzy
