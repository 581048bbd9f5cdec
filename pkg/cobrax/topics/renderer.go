package topics

// Renderer formats a topic body before it is written out. ext is the
// topic file extension, including the dot, so renderers can pass through
// formats they do not understand.
type Renderer interface {
	Render(content string, ext string) string
}

// PlainRenderer writes topics verbatim. It is used when no renderer is
// configured and for output that is not a terminal.
type PlainRenderer struct{}

// Render returns content unchanged whatever the extension
func (PlainRenderer) Render(content string, _ string) string {
	return content
}
