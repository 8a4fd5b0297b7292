package markdown

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// Destinations returns the destinations of non-image links, in document order.
func Destinations(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l.Kind != LinkKindImage && l.Destination != "" {
			out = append(out, l.Destination)
		}
	}
	return out
}
