//go:build unix

package neofile

import "testing"

func TestDeviceNumberRoundTrip(t *testing.T) {
	e := NewDeviceEntry("console", false, 5, 1)
	major, minor := e.DeviceNumber()
	if major != 5 || minor != 1 {
		t.Fatalf("got major=%d minor=%d", major, minor)
	}
	if e.Type != TypeCharDevice {
		t.Fatalf("expected char device, got %v", e.Type)
	}
	if e.Name != "./console" {
		t.Fatalf("got %q", e.Name)
	}
}

func TestDeviceNumberBlockDevice(t *testing.T) {
	e := NewDeviceEntry("sda", true, 8, 0)
	if e.Type != TypeBlockDevice {
		t.Fatalf("expected block device, got %v", e.Type)
	}
}
