package repository

import (
	"fmt"
	"strconv"
)

type ComponentKind string

const (
	KindNdk          ComponentKind = "ndk"
	KindPlatform     ComponentKind = "platform"
	KindSource       ComponentKind = "source"
	KindBuildTool    ComponentKind = "build-tool"
	KindPlatformTool ComponentKind = "platform-tool"
)

var ComponentKinds = []ComponentKind{KindNdk, KindPlatform, KindSource, KindBuildTool, KindPlatformTool}

func ParseComponentKind(s string) (ComponentKind, error) {
	for _, k := range ComponentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown component kind %q", s)
}

// Component is the common view over the five component kinds.
type Component interface {
	Kind() ComponentKind
	// Version identifies the component among others of its kind. Platforms and
	// sources are identified by api level.
	Version() string
	// Order ranks components of the same kind, newest last.
	Order() Revision
	License() string
	Downloads() []Archive
}

func (n Ndk) Kind() ComponentKind  { return KindNdk }
func (n Ndk) Version() string      { return strconv.FormatUint(uint64(n.Revision), 10) }
func (n Ndk) Order() Revision      { return Revision{Major: n.Revision} }
func (n Ndk) License() string      { return n.UsesLicense }
func (n Ndk) Downloads() []Archive { return n.Archives }

func (p Platform) Kind() ComponentKind  { return KindPlatform }
func (p Platform) Version() string      { return strconv.FormatUint(uint64(p.APILevel), 10) }
func (p Platform) Order() Revision      { return apiRevision(p.APILevel, p.Revision) }
func (p Platform) License() string      { return p.UsesLicense }
func (p Platform) Downloads() []Archive { return p.Archives }

func (s Source) Kind() ComponentKind  { return KindSource }
func (s Source) Version() string      { return strconv.FormatUint(uint64(s.APILevel), 10) }
func (s Source) Order() Revision      { return apiRevision(s.APILevel, s.Revision) }
func (s Source) License() string      { return s.UsesLicense }
func (s Source) Downloads() []Archive { return s.Archives }

func (b BuildTool) Kind() ComponentKind  { return KindBuildTool }
func (b BuildTool) Version() string      { return b.Revision.String() }
func (b BuildTool) Order() Revision      { return b.Revision }
func (b BuildTool) License() string      { return b.UsesLicense }
func (b BuildTool) Downloads() []Archive { return b.Archives }

func (p PlatformTool) Kind() ComponentKind  { return KindPlatformTool }
func (p PlatformTool) Version() string      { return p.Revision.String() }
func (p PlatformTool) Order() Revision      { return p.Revision }
func (p PlatformTool) License() string      { return p.UsesLicense }
func (p PlatformTool) Downloads() []Archive { return p.Archives }

func apiRevision(apiLevel, revision uint) Revision {
	rev := revision
	return Revision{Major: apiLevel, Minor: &rev}
}

// Components returns the components of the given kind in document order.
func (r *Repository) Components(kind ComponentKind) []Component {
	var out []Component
	switch kind {
	case KindNdk:
		for _, c := range r.Ndks {
			out = append(out, c)
		}
	case KindPlatform:
		for _, c := range r.Platforms {
			out = append(out, c)
		}
	case KindSource:
		for _, c := range r.Sources {
			out = append(out, c)
		}
	case KindBuildTool:
		for _, c := range r.BuildTools {
			out = append(out, c)
		}
	case KindPlatformTool:
		for _, c := range r.PlatformTools {
			out = append(out, c)
		}
	}
	return out
}
