//go:build !unix

package neofile

// DeviceNumber decomposes the entry's Dev field into POSIX major/minor
// numbers, for TypeCharDevice/TypeBlockDevice entries. Non-unix builds use
// the glibc makedev formula directly since golang.org/x/sys/unix does not
// export Mkdev/Major/Minor outside unix platforms.
func (e *Entry) DeviceNumber() (major, minor uint32) {
	dev := uint64(e.Dev)
	major = uint32((dev >> 8) & 0xfff)
	minor = uint32(dev&0xff | (dev>>12)&0xfff00)
	return major, minor
}

// SetDeviceNumber composes Dev, DevMajor, and DevMinor from a POSIX
// major/minor pair, for constructing a char/block device Entry.
func (e *Entry) SetDeviceNumber(major, minor uint32) {
	e.DevMajor = major
	e.DevMinor = minor
	dev := (uint64(major) & 0xfff) << 8
	dev |= uint64(minor) & 0xff
	dev |= (uint64(minor) &^ 0xff) << 12
	e.Dev = uint32(dev)
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
