package hctree

import "fmt"

func errInvalidName(name string) error {
	return fmt.Errorf("hctree: invalid name %q", name)
}

func errDuplicateName(name string) error {
	return fmt.Errorf("hctree: duplicate sibling name %q", name)
}
