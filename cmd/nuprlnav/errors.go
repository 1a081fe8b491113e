package main

import "fmt"

type flagError struct {
	flag  string
	value string
	want  string
}

func (e *flagError) Error() string {
	return fmt.Sprintf("invalid --%s value %q (expected %s)", e.flag, e.value, e.want)
}
