// Package slide provides the title/body codec used as the content encoding
// of slide-type virtual files.
package slide

import "strings"

// Slide is the decoded form of a slide file's content: the first line is
// the title, the remaining lines rejoined with newlines are the body.
type Slide struct {
	Title string
	Body  string
}

// Decode parses slide content. Content without a newline is all title.
func Decode(content string) Slide {
	title, body, found := strings.Cut(content, "\n")
	if !found {
		return Slide{Title: content}
	}
	return Slide{Title: title, Body: body}
}

// Encode serializes the slide back to file content. The title/body
// separator newline is always present so either part can be edited later
// without clobbering the other.
func (s Slide) Encode() string {
	return s.Title + "\n" + s.Body
}

// WithTitle returns a copy with a new title, preserving the body.
func (s Slide) WithTitle(title string) Slide {
	return Slide{Title: title, Body: s.Body}
}

// WithBody returns a copy with a new body, preserving the title.
func (s Slide) WithBody(body string) Slide {
	return Slide{Title: s.Title, Body: body}
}
