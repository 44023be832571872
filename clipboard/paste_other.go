//go:build !linux && !darwin && !windows

package clipboard

import "errors"

var errNoPaste = errors.New("paste injection not supported on this platform")

func Init() error { return errNoPaste }

func Paste() error { return errNoPaste }

func Verify() (string, error) { return "", errNoPaste }
