// Package xmlevent flattens an XML document into the start, end and text events
// consumed by the manifest parser.
package xmlevent

import (
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	StartElement Kind = iota
	EndElement
	Text
)

func (k Kind) String() string {
	switch k {
	case StartElement:
		return "start"
	case EndElement:
		return "end"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a single item of the flattened document. Name and Attributes are set for
// element events and hold local names only; Text is set for text events.
type Event struct {
	Kind       Kind
	Name       string
	Attributes map[string]string
	Text       string
}

func Start(name string, attributes map[string]string) Event {
	return Event{Kind: StartElement, Name: name, Attributes: attributes}
}

func End(name string) Event {
	return Event{Kind: EndElement, Name: name}
}

func Chars(text string) Event {
	return Event{Kind: Text, Text: text}
}

// Attr returns the named attribute and whether it was present.
func (e Event) Attr(name string) (string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

func (e Event) String() string {
	switch e.Kind {
	case StartElement:
		if len(e.Attributes) == 0 {
			return "<" + e.Name + ">"
		}

		keys := make([]string, 0, len(e.Attributes))
		for k := range e.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString("<" + e.Name)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%q", k, e.Attributes[k])
		}
		sb.WriteString(">")
		return sb.String()
	case EndElement:
		return "</" + e.Name + ">"
	default:
		return fmt.Sprintf("text %q", e.Text)
	}
}
