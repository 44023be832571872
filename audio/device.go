package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// FindDevice looks a device up by its display name.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", name)
}

// SelectDevice shows a raw-mode picker on the terminal with the cursor on
// current. Esc or q keeps the current choice and returns nil.
func SelectDevice(ctx Context, current string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoInputDevice
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	cursor := 0
	for i, d := range devices {
		if d.Name == current {
			cursor = i
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	render := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Microphone (↑/↓ or j/k, Enter to pick, q to keep current):\r\n\r\n")
		for i, d := range devices {
			mark := "  "
			if d.Name == current {
				mark = "* "
			}
			warn := ""
			if IsBluetooth(d.Name) {
				warn = " \x1b[33m[bluetooth: reduced quality]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s%s\x1b[0m%s\r\n", mark, d.Name, warn)
			} else {
				fmt.Printf("    %s%s%s\r\n", mark, d.Name, warn)
			}
		}
	}
	render()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch {
		case n == 1 && buf[0] == 13:
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case n == 1 && (buf[0] == 'q' || buf[0] == 0x1b):
			fmt.Print("\r\n")
			return nil, nil
		case n == 1 && buf[0] == 3:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		case n == 1 && buf[0] == 'j', n == 3 && buf[0] == 0x1b && buf[2] == 'B':
			if cursor < len(devices)-1 {
				cursor++
			}
		case n == 1 && buf[0] == 'k', n == 3 && buf[0] == 0x1b && buf[2] == 'A':
			if cursor > 0 {
				cursor--
			}
		}

		fmt.Printf("\x1b[%dA", len(devices)+2)
		render()
	}
}
