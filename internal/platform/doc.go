// Package platform builds the app.Board for the target: RP2040 hardware
// (I2C0, READY interrupt, UART diagnostics, netlink WiFi) or, on any other
// GOOS/GOARCH, the simulated board used by envserve-sim and the tests.
package platform
