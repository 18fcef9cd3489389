package main

import (
	"bufio"
	"io"
)

// plainReader reads lines without editing, for input that is not a terminal.
func plainReader(r io.Reader) func() (string, error) {
	sc := bufio.NewScanner(r)
	return func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return sc.Text(), nil
	}
}
