package adc

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// ADS1015 reads the potentiometer wiper through a TI ADS1015 on I2C.
type ADS1015 struct {
	pin  ads1x15.PinADC
	vref physic.ElectricPotential
}

// OpenADS1015 configures a single-ended channel. vref is the potentiometer
// supply voltage; it maps to MaxRaw.
func OpenADS1015(bus i2c.Bus, ch ads1x15.Channel, vref physic.ElectricPotential) (*ADS1015, error) {
	if vref <= 0 {
		return nil, fmt.Errorf("ads1015: invalid reference voltage %s", vref)
	}
	dev, err := ads1x15.NewADS1015(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ads1015: %w", err)
	}
	pin, err := dev.PinForChannel(ch, vref, 250*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1015: channel %v: %w", ch, err)
	}
	return &ADS1015{pin: pin, vref: vref}, nil
}

// Sample performs one conversion and rescales it to 0-MaxRaw.
func (a *ADS1015) Sample() (uint16, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1015: read: %w", err)
	}
	return Scale(s.V, a.vref), nil
}

// Close halts the channel.
func (a *ADS1015) Close() error {
	return a.pin.Halt()
}

// Scale maps a voltage in [0, vref] onto 0-MaxRaw, clamping outside values.
func Scale(v, vref physic.ElectricPotential) uint16 {
	if vref <= 0 || v <= 0 {
		return 0
	}
	if v >= vref {
		return MaxRaw
	}
	return uint16(int64(v) * MaxRaw / int64(vref))
}
