package repository

import (
	"errors"
	"fmt"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrArchiveNotFound   = errors.New("no archive for host")
)

// FindComponent returns the component of kind whose Version equals version, or the
// newest one by Order when version is empty. Of equal matches the last in document
// order wins.
func FindComponent(repo *Repository, kind ComponentKind, version string) (Component, error) {
	var selected Component
	for _, c := range repo.Components(kind) {
		if version != "" {
			if c.Version() == version {
				selected = c
			}
			continue
		}

		if selected == nil || c.Order().Compare(selected.Order()) >= 0 {
			selected = c
		}
	}

	if selected == nil {
		if version == "" {
			return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, kind)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrComponentNotFound, kind, version)
	}
	return selected, nil
}

// SelectArchive returns the first archive of c installable on the host.
func SelectArchive(c Component, os HostOS, bits HostBits) (Archive, error) {
	for _, a := range c.Downloads() {
		if a.Matches(os, bits) {
			return a, nil
		}
	}
	return Archive{}, fmt.Errorf("%w: %s %s on %s/%s", ErrArchiveNotFound, c.Kind(), c.Version(), os, bits)
}
