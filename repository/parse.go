package repository

import (
	"errors"
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/xmlevent"
	"io"
	"strconv"
)

const rootElement = "sdk-repository"

// ParseReader tokenizes r and parses the sdk-repository manifest it contains.
func ParseReader(r io.Reader) (*Repository, error) {
	return Parse(xmlevent.NewDecoderStream(r))
}

// Parse consumes stream in a single forward pass and builds the manifest. The first
// event must open sdk-repository. Unknown elements are skipped along with their
// children. On error no repository is returned.
func Parse(stream xmlevent.Stream) (*Repository, error) {
	p := &parser{stream: stream}

	first, err := p.next(rootElement)
	if err != nil {
		return nil, err
	}
	if first.Kind != xmlevent.StartElement || first.Name != rootElement {
		return nil, &StructureError{Element: rootElement, Msg: fmt.Sprintf("expected root element, found %s", first)}
	}

	return p.repository()
}

type parser struct {
	stream xmlevent.Stream
}

// children maps a child element name to the handler consuming it. Each handler is
// entered just after the child's start event and must consume its end event.
type children map[string]func(start xmlevent.Event) error

func (p *parser) next(within string) (xmlevent.Event, error) {
	e, err := p.stream.Next()
	if errors.Is(err, io.EOF) {
		return e, &StructureError{Element: within, Msg: "stream ended before closing tag"}
	}
	if err != nil {
		return e, &StructureError{Element: within, Err: err}
	}
	return e, nil
}

// element runs the loop shared by all composite elements, returning once the
// closing tag of name has been consumed.
func (p *parser) element(name string, handlers children) error {
	for {
		e, err := p.next(name)
		if err != nil {
			return err
		}

		switch e.Kind {
		case xmlevent.StartElement:
			if handle, ok := handlers[e.Name]; ok {
				if err := handle(e); err != nil {
					return err
				}
				continue
			}

			if err := p.skip(e.Name); err != nil {
				return err
			}
		case xmlevent.EndElement:
			if e.Name == name {
				return nil
			}
			return &StructureError{Element: name, Expected: name, Actual: e.Name}
		}
	}
}

// skip discards the subtree of an element whose start has been consumed.
func (p *parser) skip(name string) error {
	open := []string{name}
	for len(open) > 0 {
		top := open[len(open)-1]

		e, err := p.next(top)
		if err != nil {
			return err
		}

		switch e.Kind {
		case xmlevent.StartElement:
			open = append(open, e.Name)
		case xmlevent.EndElement:
			if e.Name != top {
				return &StructureError{Element: top, Expected: top, Actual: e.Name}
			}
			open = open[:len(open)-1]
		}
	}
	return nil
}

// text reads a leaf element. When several text events occur the last one wins.
func (p *parser) text(name string) (string, error) {
	var text string
	for {
		e, err := p.next(name)
		if err != nil {
			return "", err
		}

		switch e.Kind {
		case xmlevent.Text:
			text = e.Text
		case xmlevent.EndElement:
			if e.Name != name {
				return "", &StructureError{Element: name, Expected: name, Actual: e.Name}
			}
			return text, nil
		case xmlevent.StartElement:
			return "", &StructureError{Element: name, Msg: fmt.Sprintf("unexpected element %s", e)}
		}
	}
}

// unsigned reads a non-negative decimal leaf. An empty element reads as zero.
func (p *parser) unsigned(name string) (uint, error) {
	text, err := p.text(name)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(text, 10, strconv.IntSize)
	if err != nil {
		return 0, &ValueError{Field: name, Text: text, Err: err}
	}
	return uint(v), nil
}

func (p *parser) optionalUnsigned(name string) (*uint, error) {
	v, err := p.unsigned(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *parser) repository() (*Repository, error) {
	repo := Repository{Licenses: make(map[string]string)}

	err := p.element(rootElement, children{
		"license": func(start xmlevent.Event) error {
			id, ok := start.Attr("id")
			if !ok {
				return &StructureError{Element: "license", Msg: "missing id attribute"}
			}

			body, err := p.text("license")
			if err != nil {
				return err
			}
			repo.Licenses[id] = body
			return nil
		},
		"ndk": func(xmlevent.Event) error {
			v, err := p.ndk()
			repo.Ndks = appendOnSuccess(repo.Ndks, v, err)
			return err
		},
		"platform": func(xmlevent.Event) error {
			v, err := p.platform()
			repo.Platforms = appendOnSuccess(repo.Platforms, v, err)
			return err
		},
		"source": func(xmlevent.Event) error {
			v, err := p.source()
			repo.Sources = appendOnSuccess(repo.Sources, v, err)
			return err
		},
		"build-tool": func(xmlevent.Event) error {
			v, err := p.buildTool()
			repo.BuildTools = appendOnSuccess(repo.BuildTools, v, err)
			return err
		},
		"platform-tool": func(xmlevent.Event) error {
			v, err := p.platformTool()
			repo.PlatformTools = appendOnSuccess(repo.PlatformTools, v, err)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func appendOnSuccess[T any](s []T, v T, err error) []T {
	if err != nil {
		return s
	}
	return append(s, v)
}

// usesLicense reads the ref attribute and consumes the element through its close.
func (p *parser) usesLicense(start xmlevent.Event) (string, error) {
	ref, ok := start.Attr("ref")
	if !ok {
		return "", &StructureError{Element: "uses-license", Msg: "missing ref attribute"}
	}
	if err := p.skip(start.Name); err != nil {
		return "", err
	}
	return ref, nil
}

func (p *parser) ndk() (Ndk, error) {
	var ndk Ndk
	err := p.element(string(KindNdk), children{
		"revision": func(xmlevent.Event) (err error) {
			ndk.Revision, err = p.unsigned("revision")
			return err
		},
		"uses-license": func(start xmlevent.Event) (err error) {
			ndk.UsesLicense, err = p.usesLicense(start)
			return err
		},
		"archives": func(xmlevent.Event) (err error) {
			ndk.Archives, err = p.archives()
			return err
		},
	})
	if err != nil {
		return Ndk{}, err
	}
	return ndk, nil
}

func (p *parser) platform() (Platform, error) {
	var platform Platform
	err := p.element(string(KindPlatform), children{
		"api-level": func(xmlevent.Event) (err error) {
			platform.APILevel, err = p.unsigned("api-level")
			return err
		},
		"revision": func(xmlevent.Event) (err error) {
			platform.Revision, err = p.unsigned("revision")
			return err
		},
		"uses-license": func(start xmlevent.Event) (err error) {
			platform.UsesLicense, err = p.usesLicense(start)
			return err
		},
		"archives": func(xmlevent.Event) (err error) {
			platform.Archives, err = p.archives()
			return err
		},
	})
	if err != nil {
		return Platform{}, err
	}
	return platform, nil
}

func (p *parser) source() (Source, error) {
	var source Source
	err := p.element(string(KindSource), children{
		"api-level": func(xmlevent.Event) (err error) {
			source.APILevel, err = p.unsigned("api-level")
			return err
		},
		"revision": func(xmlevent.Event) (err error) {
			source.Revision, err = p.unsigned("revision")
			return err
		},
		"uses-license": func(start xmlevent.Event) (err error) {
			source.UsesLicense, err = p.usesLicense(start)
			return err
		},
		"archives": func(xmlevent.Event) (err error) {
			source.Archives, err = p.archives()
			return err
		},
	})
	if err != nil {
		return Source{}, err
	}
	return source, nil
}

func (p *parser) buildTool() (BuildTool, error) {
	var tool BuildTool
	err := p.element(string(KindBuildTool), children{
		"revision": func(xmlevent.Event) (err error) {
			tool.Revision, err = p.revision()
			return err
		},
		"uses-license": func(start xmlevent.Event) (err error) {
			tool.UsesLicense, err = p.usesLicense(start)
			return err
		},
		"archives": func(xmlevent.Event) (err error) {
			tool.Archives, err = p.archives()
			return err
		},
	})
	if err != nil {
		return BuildTool{}, err
	}
	return tool, nil
}

func (p *parser) platformTool() (PlatformTool, error) {
	var tool PlatformTool
	err := p.element(string(KindPlatformTool), children{
		"revision": func(xmlevent.Event) (err error) {
			tool.Revision, err = p.revision()
			return err
		},
		"uses-license": func(start xmlevent.Event) (err error) {
			tool.UsesLicense, err = p.usesLicense(start)
			return err
		},
		"archives": func(xmlevent.Event) (err error) {
			tool.Archives, err = p.archives()
			return err
		},
	})
	if err != nil {
		return PlatformTool{}, err
	}
	return tool, nil
}

func (p *parser) revision() (Revision, error) {
	var rev Revision
	err := p.element("revision", children{
		"major": func(xmlevent.Event) (err error) {
			rev.Major, err = p.unsigned("major")
			return err
		},
		"minor": func(xmlevent.Event) (err error) {
			rev.Minor, err = p.optionalUnsigned("minor")
			return err
		},
		"micro": func(xmlevent.Event) (err error) {
			rev.Micro, err = p.optionalUnsigned("micro")
			return err
		},
		"preview": func(xmlevent.Event) (err error) {
			rev.Preview, err = p.optionalUnsigned("preview")
			return err
		},
	})
	if err != nil {
		return Revision{}, err
	}
	return rev, nil
}

func (p *parser) archives() ([]Archive, error) {
	var archives []Archive
	err := p.element("archives", children{
		"archive": func(xmlevent.Event) error {
			a, err := p.archive()
			archives = appendOnSuccess(archives, a, err)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return archives, nil
}

func (p *parser) archive() (Archive, error) {
	var archive Archive
	err := p.element("archive", children{
		"checksum": func(xmlevent.Event) (err error) {
			archive.Checksum, err = p.text("checksum")
			return err
		},
		"url": func(xmlevent.Event) (err error) {
			archive.URL, err = p.text("url")
			return err
		},
		"host-os": func(xmlevent.Event) error {
			text, err := p.text("host-os")
			if err != nil {
				return err
			}

			os, err := ParseHostOS(text)
			if err != nil {
				return &ValueError{Field: "host-os", Text: text, Err: err}
			}
			archive.HostOS = &os
			return nil
		},
		"host-bits": func(xmlevent.Event) error {
			text, err := p.text("host-bits")
			if err != nil {
				return err
			}

			bits, err := ParseHostBits(text)
			if err != nil {
				return &ValueError{Field: "host-bits", Text: text, Err: err}
			}
			archive.HostBits = &bits
			return nil
		},
	})
	if err != nil {
		return Archive{}, err
	}
	return archive, nil
}
