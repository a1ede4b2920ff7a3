package heatzy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DeviceMode is the heating mode of a Heatzy device.
//
// The zero value is not a valid mode. Use the ModeFrom* functions to obtain
// a DeviceMode from any of its external representations.
type DeviceMode int

const (
	// ModeComfort is the comfort setpoint (code 0, "cft")
	ModeComfort DeviceMode = iota + 1
	// ModeEco is the economy setpoint (code 1, "eco")
	ModeEco
	// ModeFrostProtection keeps the room above freezing (code 2, "fro")
	ModeFrostProtection
	// ModeStop turns heating off (code 3, "stop")
	ModeStop
	// ModeComfortMinus1 is comfort minus one degree (code 4, "cft1")
	ModeComfortMinus1
	// ModeComfortMinus2 is comfort minus two degrees (code 5, "cft2")
	ModeComfortMinus2
)

// modeEncoding holds the three external forms of one mode.
type modeEncoding struct {
	code int
	api  string
	cli  string
}

// modeTable is indexed by code; entry i describes the mode with code i.
var modeTable = [...]struct {
	mode DeviceMode
	modeEncoding
}{
	{ModeComfort, modeEncoding{0, "cft", "comfort"}},
	{ModeEco, modeEncoding{1, "eco", "eco"}},
	{ModeFrostProtection, modeEncoding{2, "fro", "frost-protection"}},
	{ModeStop, modeEncoding{3, "stop", "stop"}},
	{ModeComfortMinus1, modeEncoding{4, "cft1", "comfort-1"}},
	{ModeComfortMinus2, modeEncoding{5, "cft2", "comfort-2"}},
}

// cliAliases maps every accepted (lowercase) CLI spelling to its mode.
var cliAliases = map[string]DeviceMode{
	"comfort":          ModeComfort,
	"eco":              ModeEco,
	"frost-protection": ModeFrostProtection,
	"frost":            ModeFrostProtection,
	"stop":             ModeStop,
	"comfort-1":        ModeComfortMinus1,
	"comfort-minus-1":  ModeComfortMinus1,
	"comfort-2":        ModeComfortMinus2,
	"comfort-minus-2":  ModeComfortMinus2,
}

// Modes returns all six modes in code order.
func Modes() []DeviceMode {
	modes := make([]DeviceMode, len(modeTable))
	for i, entry := range modeTable {
		modes[i] = entry.mode
	}
	return modes
}

// CLIModeNames returns the canonical CLI names in code order.
func CLIModeNames() []string {
	names := make([]string, len(modeTable))
	for i, entry := range modeTable {
		names[i] = entry.cli
	}
	return names
}

// Valid reports whether m is one of the six known modes.
func (m DeviceMode) Valid() bool {
	return m >= ModeComfort && m <= ModeComfortMinus2
}

func (m DeviceMode) encoding() modeEncoding {
	if !m.Valid() {
		panic(fmt.Sprintf("heatzy: invalid DeviceMode %d", int(m)))
	}
	return modeTable[m-ModeComfort].modeEncoding
}

// Int returns the integer code sent to and received from the API.
func (m DeviceMode) Int() int {
	return m.encoding().code
}

// APIString returns the short string the API uses for this mode.
func (m DeviceMode) APIString() string {
	return m.encoding().api
}

// CLIString returns the canonical command-line name of the mode.
func (m DeviceMode) CLIString() string {
	return m.encoding().cli
}

// String implements fmt.Stringer using the CLI name.
func (m DeviceMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("DeviceMode(%d)", int(m))
	}
	return m.CLIString()
}

// ModeFromInt decodes an API integer code (0-5).
func ModeFromInt(code int) (DeviceMode, error) {
	if code < 0 || code >= len(modeTable) {
		return 0, NewInvalidModeError(strconv.Itoa(code), fmt.Sprintf("unknown mode number %d", code), nil)
	}
	return modeTable[code].mode, nil
}

// ModeFromAPIString decodes an API mode string. Matching is exact.
func ModeFromAPIString(s string) (DeviceMode, error) {
	for _, entry := range modeTable {
		if entry.api == s {
			return entry.mode, nil
		}
	}
	return 0, NewInvalidModeError(s, fmt.Sprintf("unknown mode string %q", s), nil)
}

// ModeFromCLIString decodes a user supplied mode name.
// Matching is case-insensitive and accepts "frost", "comfort-minus-1" and
// "comfort-minus-2" as aliases.
func ModeFromCLIString(s string) (DeviceMode, error) {
	if mode, ok := cliAliases[strings.ToLower(s)]; ok {
		return mode, nil
	}
	valid := CLIModeNames()
	return 0, NewInvalidModeError(s,
		fmt.Sprintf("%s. Valid modes are: %s", s, strings.Join(valid, ", ")),
		valid)
}

// ModeValueKind is the JSON kind of a raw mode value.
type ModeValueKind int

const (
	// ModeValueOther is anything that is neither an integer nor a string
	ModeValueOther ModeValueKind = iota
	// ModeValueInt is a JSON number with an integral value
	ModeValueInt
	// ModeValueString is a JSON string
	ModeValueString
)

// String returns the kind name.
func (k ModeValueKind) String() string {
	switch k {
	case ModeValueInt:
		return "integer"
	case ModeValueString:
		return "string"
	default:
		return "other"
	}
}

// ModeValue is the mode field of device data as received on the wire.
// Depending on the product the API reports either an integer code or an API
// string in the same field.
type ModeValue struct {
	Kind ModeValueKind
	Int  int64
	Str  string
	Raw  json.RawMessage
}

// UnmarshalJSON records the runtime kind of the value without failing on
// unexpected kinds; Decode reports those.
func (v *ModeValue) UnmarshalJSON(data []byte) error {
	v.Raw = append(v.Raw[:0], data...)
	v.Kind = ModeValueOther

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &v.Str); err != nil {
			return err
		}
		v.Kind = ModeValueString
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			v.Int = i
			v.Kind = ModeValueInt
		}
	}
	return nil
}

// Decode converts the raw value into a DeviceMode, dispatching on its kind.
func (v ModeValue) Decode() (DeviceMode, error) {
	switch v.Kind {
	case ModeValueInt:
		if v.Int < 0 || v.Int >= int64(len(modeTable)) {
			return 0, NewInvalidModeError(strconv.FormatInt(v.Int, 10), fmt.Sprintf("unknown mode number %d", v.Int), nil)
		}
		return ModeFromInt(int(v.Int))
	case ModeValueString:
		return ModeFromAPIString(v.Str)
	default:
		raw := string(v.Raw)
		if raw == "" {
			raw = "<missing>"
		}
		return 0, NewInvalidModeError(raw, fmt.Sprintf("unexpected mode value %s (expected integer or string)", raw), nil)
	}
}
