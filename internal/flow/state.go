package flow

// State identifies the active view of an invitation session.
type State int

const (
	StateMain State = iota
	StateEmailEntry
	StateContactsPicker
	StateGoogleContactsPicker
	StateQRCode
)

var stateNames = map[State]string{
	StateMain:                 "main",
	StateEmailEntry:           "email-entry",
	StateContactsPicker:       "contacts-picker",
	StateGoogleContactsPicker: "google-contacts-picker",
	StateQRCode:               "qr-code",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
