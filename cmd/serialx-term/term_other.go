//go:build !linux

package main

import "errors"

func makeRaw(fd int) (func(), error) {
	return nil, errors.New("raw terminal mode not supported on this platform")
}
