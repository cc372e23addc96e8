package utils

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// DeviceUIDPrefix namespaces audience identifiers away from performer ids,
// which are bare integers carried in JWT claims.
const DeviceUIDPrefix = "device_"

// NewDeviceUID mints the per-device identifier an audience session is keyed
// by: device_<unix-millis>_<random base36>.  Clients persist it locally and
// present it on later visits, so board activity before and after ticket
// verification correlates by the same uid.
func NewDeviceUID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	n := binary.BigEndian.Uint64(append([]byte{0, 0}, b[:]...))
	return DeviceUIDPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + strconv.FormatUint(n, 36)
}
