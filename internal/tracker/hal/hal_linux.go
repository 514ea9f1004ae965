//go:build linux

package hal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"
	"k8s.io/utils/clock"
)

const consumer = "seatrack-modem-reset"

// pulseLine finds lineName on any GPIO chip, drives it low for pulse and
// releases it high.
func pulseLine(lineName string, pulse time.Duration, clk clock.Clock) error {
	chip, line, err := requestLine(lineName)
	if err != nil {
		return err
	}
	defer chip.Close()
	defer line.Close()

	if err := line.SetValue(0); err != nil {
		return fmt.Errorf("drive %s low: %w", lineName, err)
	}
	clk.Sleep(pulse)
	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("release %s: %w", lineName, err)
	}
	return nil
}

func requestLine(lineName string) (*gpiocdev.Chip, *gpiocdev.Line, error) {
	candidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			candidates = append(candidates, filepath.Join("/dev", e.Name()))
		}
	}

	for _, path := range candidates {
		chip, err := gpiocdev.NewChip(path)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer(consumer))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return chip, line, nil
	}
	return nil, nil, fmt.Errorf("gpio line %q not found (or busy)", lineName)
}

func reboot() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
