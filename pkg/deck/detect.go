package deck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// ErrNoBoard is returned by Detect when no candidate controller is attached.
var ErrNoBoard = errors.New("no controller board found")

// USB vendor ids of common microcontroller boards and their bridge chips.
var knownVendors = map[string]string{
	"2341": "Arduino",
	"2a03": "Arduino",
	"0403": "FTDI",
	"1a86": "CH340",
	"10c4": "CP210x",
}

var knownProducts = []string{"arduino", "ftdi", "ch340", "usb serial"}

// Detect returns the device path of the first attached USB serial port that
// looks like a controller board.
func Detect() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vendor, known := knownVendors[strings.ToLower(p.VID)]
		if !known && !matchesProduct(p.Product) {
			log.Debug().Str("port", p.Name).Str("vid", p.VID).Str("product", p.Product).Msg("Skipping serial port")
			continue
		}
		log.Info().
			Str("port", p.Name).
			Str("vid", p.VID).
			Str("pid", p.PID).
			Str("vendor", vendor).
			Str("product", p.Product).
			Msg("Controller board detected")
		return p.Name, nil
	}

	return "", ErrNoBoard
}

func matchesProduct(product string) bool {
	product = strings.ToLower(product)
	for _, name := range knownProducts {
		if strings.Contains(product, name) {
			return true
		}
	}
	return false
}
