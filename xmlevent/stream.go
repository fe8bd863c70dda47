package xmlevent

import (
	"encoding/xml"
	"io"
	"strings"
)

// Stream is a single pass cursor over events. Next returns io.EOF once the
// events are exhausted; any other error comes from the tokenizer.
type Stream interface {
	Next() (Event, error)
}

type sliceStream struct {
	events []Event
	pos    int
}

// FromEvents returns a Stream replaying the given events in order.
func FromEvents(events ...Event) Stream {
	return &sliceStream{events: events}
}

func (s *sliceStream) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}

	e := s.events[s.pos]
	s.pos++
	return e, nil
}

type decoderStream struct {
	dec *xml.Decoder
}

// NewDecoderStream tokenizes r lazily. Whitespace-only text, comments, directives
// and processing instructions are dropped. CDATA sections arrive as text.
func NewDecoderStream(r io.Reader) Stream {
	return &decoderStream{dec: xml.NewDecoder(r)}
}

func (s *decoderStream) Next() (Event, error) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return Event{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			return Start(t.Name.Local, attrs), nil
		case xml.EndElement:
			return End(t.Name.Local), nil
		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			return Chars(text), nil
		}
	}
}
