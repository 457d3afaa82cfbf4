//go:build rp2040 && !ninafw

package platform

// The WiFi link is driven through netlink/probe, which has a backend for the
// NINA-W102 co-processor only on ninafw targets. Build with
// -target=nano-rp2040 (Arduino Nano RP2040 Connect); a bare pico has no
// radio to serve the page from.
var _ = envserve_needs_a_ninafw_target_such_as_nano_rp2040
