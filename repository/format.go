package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// Repository is the parsed sdk-repository manifest. It is built by Parse and is
// not modified afterwards.
type Repository struct {
	// Licenses maps license id to license text.
	Licenses      map[string]string
	Ndks          []Ndk
	Platforms     []Platform
	Sources       []Source
	BuildTools    []BuildTool
	PlatformTools []PlatformTool
}

// UsesLicense fields hold the referenced license id, or "" when the component names
// no license. The id is not checked against Repository.Licenses.

type Ndk struct {
	Revision    uint
	UsesLicense string
	Archives    []Archive
}

type Platform struct {
	APILevel    uint
	Revision    uint
	UsesLicense string
	Archives    []Archive
}

type Source struct {
	APILevel    uint
	Revision    uint
	UsesLicense string
	Archives    []Archive
}

type BuildTool struct {
	Revision    Revision
	UsesLicense string
	Archives    []Archive
}

type PlatformTool struct {
	Revision    Revision
	UsesLicense string
	Archives    []Archive
}

// Revision is a major[.minor[.micro]] version with an optional preview number.
// Each optional part may be present independently of the others.
type Revision struct {
	Major   uint
	Minor   *uint
	Micro   *uint
	Preview *uint
}

func (r Revision) String() string {
	s := strconv.FormatUint(uint64(r.Major), 10)
	if r.Minor != nil || r.Micro != nil {
		s += "." + strconv.FormatUint(uint64(orZero(r.Minor)), 10)
	}
	if r.Micro != nil {
		s += "." + strconv.FormatUint(uint64(*r.Micro), 10)
	}
	if r.Preview != nil {
		s += " rc" + strconv.FormatUint(uint64(*r.Preview), 10)
	}
	return s
}

// Compare orders revisions numerically. Missing minor and micro parts count as
// zero, and a preview sorts before the final release of the same version.
func (r Revision) Compare(o Revision) int {
	if c := compareUint(r.Major, o.Major); c != 0 {
		return c
	}
	if c := compareUint(orZero(r.Minor), orZero(o.Minor)); c != 0 {
		return c
	}
	if c := compareUint(orZero(r.Micro), orZero(o.Micro)); c != 0 {
		return c
	}

	switch {
	case r.Preview == nil && o.Preview == nil:
		return 0
	case r.Preview == nil:
		return 1
	case o.Preview == nil:
		return -1
	default:
		return compareUint(*r.Preview, *o.Preview)
	}
}

func orZero(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

func compareUint(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type HostOS string

const (
	HostLinux   HostOS = "linux"
	HostMacOSX  HostOS = "macosx"
	HostWindows HostOS = "windows"
)

// ParseHostOS maps a manifest host-os token. Matching is exact.
func ParseHostOS(s string) (HostOS, error) {
	switch HostOS(s) {
	case HostLinux, HostMacOSX, HostWindows:
		return HostOS(s), nil
	}
	return "", fmt.Errorf("unknown host-os %q", s)
}

type HostBits uint8

const (
	Bits32 HostBits = 32
	Bits64 HostBits = 64
)

// ParseHostBits maps a manifest host-bits token. Matching is exact.
func ParseHostBits(s string) (HostBits, error) {
	switch s {
	case "32":
		return Bits32, nil
	case "64":
		return Bits64, nil
	}
	return 0, fmt.Errorf("unknown host-bits %q", s)
}

func (b HostBits) String() string {
	return strconv.Itoa(int(b))
}

// Archive is one downloadable package of a component. Archives without host tags
// install on any host.
type Archive struct {
	Checksum string
	URL      string
	HostOS   *HostOS
	HostBits *HostBits
}

// AbsoluteURL joins the relative archive url onto base.
func (a Archive) AbsoluteURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/" + a.URL
}

// Matches reports whether the archive installs on the given host.
func (a Archive) Matches(os HostOS, bits HostBits) bool {
	if a.HostOS != nil && *a.HostOS != os {
		return false
	}
	if a.HostBits != nil && *a.HostBits != bits {
		return false
	}
	return true
}

func (a Archive) String() string {
	host := "any"
	if a.HostOS != nil {
		host = string(*a.HostOS)
	}
	if a.HostBits != nil {
		host += "/" + a.HostBits.String()
	}
	return fmt.Sprintf("%s (%s)", a.URL, host)
}
