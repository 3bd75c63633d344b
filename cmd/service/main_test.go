package main

import "testing"

// TestMain_WiringOnly documents why cmd/service has no unit tests.
// Router, config, catalog, and drain logic are covered in their internal packages.
func TestMain_WiringOnly(t *testing.T) {
	t.Skip("main.go only wires config, catalog, router, and shutdown; exercising it needs a real listener and signals")
}
