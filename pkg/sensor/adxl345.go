package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// ADXL345 register map (subset).
const (
	regDevID      = 0x00
	regBWRate     = 0x2C
	regPowerCtl   = 0x2D
	regDataFormat = 0x31
	regDataX0     = 0x32

	devIDValue = 0xE5

	bwRate100Hz     = 0x0A // enough headroom for a 10-20ms poll interval
	powerCtlMeasure = 0x08
	dataFormatFull  = 0x0B // full resolution, +/-16g

	// Full-resolution scale factor, g per LSB.
	scalePerLSB = 0.004
)

// DefaultI2CAddr is the ADXL345 address with the SDO pin low.
const DefaultI2CAddr = 0x53

// i2cSlave is the I2C_SLAVE ioctl request on Linux.
const i2cSlave = 0x0703

// ADXL345 reads acceleration samples from an ADXL345 accelerometer on a
// Linux I2C character device.
type ADXL345 struct {
	dev  string
	addr int

	mu sync.Mutex
	fd int
}

// NewADXL345 returns an unopened ADXL345 source on the given I2C character
// device (e.g. /dev/i2c-1).
func NewADXL345(dev string, addr int) *ADXL345 {
	return &ADXL345{dev: dev, addr: addr, fd: -1}
}

// Probe opens the bus, verifies the device ID register and puts the sensor
// into full-resolution measurement mode.
func (a *ADXL345) Probe() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fd < 0 {
		fd, err := unix.Open(a.dev, unix.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", a.dev, err)
		}
		if err := unix.IoctlSetInt(fd, i2cSlave, a.addr); err != nil {
			_ = unix.Close(fd)
			return fmt.Errorf("failed to select i2c address %#02x: %w", a.addr, err)
		}
		a.fd = fd
	}

	id, err := a.readRegister(regDevID)
	if err != nil {
		return fmt.Errorf("failed to read device id: %w", err)
	}
	if id != devIDValue {
		return fmt.Errorf("unexpected device id %#02x at %s addr %#02x, want %#02x", id, a.dev, a.addr, devIDValue)
	}

	for _, rv := range [][2]byte{
		{regBWRate, bwRate100Hz},
		{regDataFormat, dataFormatFull},
		{regPowerCtl, powerCtlMeasure},
	} {
		if err := a.writeRegister(rv[0], rv[1]); err != nil {
			return fmt.Errorf("failed to write register %#02x: %w", rv[0], err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"dev":  a.dev,
		"addr": fmt.Sprintf("%#02x", a.addr),
	}).Debug("adxl345 probed and configured")

	return nil
}

// Read returns one acceleration sample converted to g.
func (a *ADXL345) Read() (Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fd < 0 {
		return Sample{}, fmt.Errorf("sensor not probed")
	}

	if _, err := unix.Write(a.fd, []byte{regDataX0}); err != nil {
		return Sample{}, fmt.Errorf("failed to address data registers: %w", err)
	}

	buf := make([]byte, 6)
	n, err := unix.Read(a.fd, buf)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to read data registers: %w", err)
	}
	if n != len(buf) {
		return Sample{}, fmt.Errorf("short read from data registers: got %d bytes", n)
	}

	return Sample{
		X:    float64(int16(uint16(buf[0])|uint16(buf[1])<<8)) * scalePerLSB,
		Y:    float64(int16(uint16(buf[2])|uint16(buf[3])<<8)) * scalePerLSB,
		Z:    float64(int16(uint16(buf[4])|uint16(buf[5])<<8)) * scalePerLSB,
		Time: time.Now(),
	}, nil
}

// Close closes the I2C file descriptor.
func (a *ADXL345) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fd < 0 {
		return nil
	}
	err := unix.Close(a.fd)
	a.fd = -1
	return err
}

func (a *ADXL345) readRegister(reg byte) (byte, error) {
	if _, err := unix.Write(a.fd, []byte{reg}); err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if _, err := unix.Read(a.fd, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (a *ADXL345) writeRegister(reg, val byte) error {
	_, err := unix.Write(a.fd, []byte{reg, val})
	return err
}
