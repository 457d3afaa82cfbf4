package types

// ---- Network link state ----

// LinkStatus is the state reported by the network link collaborator. Names
// follow the usual WiFi co-processor status table.
type LinkStatus uint8

const (
	LinkIdle LinkStatus = iota
	LinkNoSSID
	LinkConnected
	LinkConnectFailed
	LinkConnectionLost
	LinkDisconnected
	LinkAPListening
	LinkAPFailed
)

func (s LinkStatus) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkNoSSID:
		return "no_ssid_available"
	case LinkConnected:
		return "connected"
	case LinkConnectFailed:
		return "connect_failed"
	case LinkConnectionLost:
		return "connection_lost"
	case LinkDisconnected:
		return "disconnected"
	case LinkAPListening:
		return "ap_listening"
	case LinkAPFailed:
		return "ap_failed"
	default:
		return "unknown"
	}
}

// LinkMode is chosen once at startup.
type LinkMode uint8

const (
	ModeJoin LinkMode = iota // associate with an existing network, dynamic address
	ModeHost                 // create a network with a fixed address
)

func (m LinkMode) String() string {
	if m == ModeHost {
		return "host"
	}
	return "join"
}
