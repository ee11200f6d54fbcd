//go:build unix

package neofile

import "golang.org/x/sys/unix"

// DeviceNumber decomposes the entry's Dev field into POSIX major/minor
// numbers, for TypeCharDevice/TypeBlockDevice entries.
func (e *Entry) DeviceNumber() (major, minor uint32) {
	return unix.Major(uint64(e.Dev)), unix.Minor(uint64(e.Dev))
}

// SetDeviceNumber composes Dev, DevMajor, and DevMinor from a POSIX
// major/minor pair, for constructing a char/block device Entry.
func (e *Entry) SetDeviceNumber(major, minor uint32) {
	e.DevMajor = major
	e.DevMinor = minor
	e.Dev = uint32(unix.Mkdev(major, minor))
}

// NewDeviceEntry builds a char- or block-device Entry with Dev/DevMajor/
// DevMinor populated from major/minor.
func NewDeviceEntry(name string, blockDevice bool, major, minor uint32) Entry {
	e := Entry{
		Name: NormalizeName(name),
		Type: TypeCharDevice,
	}
	if blockDevice {
		e.Type = TypeBlockDevice
	}
	e.SetDeviceNumber(major, minor)
	return e
}
