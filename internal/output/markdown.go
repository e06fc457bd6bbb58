package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

const markdownWrapWidth = 100

// RenderMarkdown renders task descriptions for terminal display.
func RenderMarkdown(content string) (string, error) {
	renderer, rendererError := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrapWidth),
	)
	if rendererError != nil {
		return "", rendererError
	}
	rendered, renderError := renderer.Render(content)
	if renderError != nil {
		return "", renderError
	}
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

// description prints the task description below its fields. Unstyled output or a
// markdown failure prints the raw text.
func (renderer *Renderer) description(text string) error {
	if _, writeError := io.WriteString(renderer.writer, "\n"); writeError != nil {
		return writeError
	}
	if renderer.styled && renderer.markdown != nil {
		if rendered, renderError := renderer.markdown(text); renderError == nil {
			_, writeError := io.WriteString(renderer.writer, rendered)
			return writeError
		}
	}
	_, writeError := io.WriteString(renderer.writer, strings.TrimRight(text, "\n")+"\n")
	return writeError
}
