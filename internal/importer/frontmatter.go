package importer

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/laguz/internal/noteservice"
)

// frontmatter is the YAML header accepted on inbox files.
type frontmatter struct {
	Title    string   `yaml:"title"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Favorite bool     `yaml:"favorite"`
}

// ParseNote converts raw Markdown bytes into a note input. A YAML
// frontmatter block between leading --- delimiters supplies metadata; the
// title falls back to the first H1 heading when the frontmatter has none.
// Invalid YAML is tolerated: the whole file becomes the body.
func ParseNote(data []byte) noteservice.NoteInput {
	fm, body := splitFrontmatter(data)

	title := fm.Title
	if title == "" {
		title = firstHeading(body)
	}

	return noteservice.NoteInput{
		Title:    title,
		Content:  body,
		Category: fm.Category,
		Tags:     fm.Tags,
		Favorite: fm.Favorite,
	}
}

func splitFrontmatter(data []byte) (frontmatter, string) {
	const delim = "---"
	var fm frontmatter

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return fm, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return frontmatter{}, string(data)
	}
	return fm, body
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
