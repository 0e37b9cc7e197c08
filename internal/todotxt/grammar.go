// Package todotxt reads and writes todo.txt records and the metadata tags
// embedded in their descriptions.
package todotxt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
)

var (
	doneRe     = regexp.MustCompile(`^x\s+`)
	priorityRe = regexp.MustCompile(`^\(([A-Z])\)\s+`)
	// tagRe matches +project, @context and key:value preceded by whitespace
	// or the start of the text.
	tagRe = regexp.MustCompile(`(^|\s)(?P<tag>(?P<head>@|\+|(?P<key>\w+):)\S+)\b`)

	tagIdx  = tagRe.SubexpIndex("tag")
	headIdx = tagRe.SubexpIndex("head")
)

// Parse reads a single todo.txt line.
func Parse(line string) (model.Record, error) {
	var (
		done      bool
		priority  rune
		created   *model.Date
		completed *model.Date
	)
	s := line

	if m := doneRe.FindString(s); m != "" {
		done = true
		s = s[len(m):]
	}

	if m := priorityRe.FindStringSubmatch(s); m != nil {
		priority = rune(m[1][0])
		s = s[len(m[0]):]
	}

	if tok, rest := nextToken(s); tok != "" {
		if first, err := model.ParseDate(tok); err == nil {
			s = rest
			created = &first
			if tok2, rest2 := nextToken(rest); tok2 != "" {
				if second, err := model.ParseDate(tok2); err == nil {
					if !done {
						return model.Record{}, &model.FormatError{Input: line, Msg: "completion date on uncompleted item"}
					}
					s = rest2
					completed = &first
					created = &second
				}
			}
		}
	}

	return model.New(done, priority, created, completed, strings.TrimLeftFunc(s, unicode.IsSpace))
}

// nextToken splits s at the first whitespace rune.
func nextToken(s string) (tok, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[:i], s[i+size:]
}

// Format renders a record as a todo.txt line.
func Format(r model.Record) string {
	var b strings.Builder
	if r.Done {
		b.WriteString("x ")
	}
	if r.Priority != 0 {
		fmt.Fprintf(&b, "(%c) ", r.Priority)
	}
	if r.Completed != nil {
		b.WriteString(r.Completed.String())
		b.WriteByte(' ')
	}
	if r.Created != nil {
		b.WriteString(r.Created.String())
		b.WriteByte(' ')
	}
	b.WriteString(r.Description)
	return b.String()
}

// FindMeta returns the tags in description from left to right.
// Each call scans the text again; nothing is cached.
func FindMeta(description string) []model.Tag {
	matches := tagRe.FindAllStringSubmatch(description, -1)
	tags := make([]model.Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, parseTag(m[tagIdx]))
	}
	return tags
}

func parseTag(s string) model.Tag {
	switch s[0] {
	case '@':
		return model.ContextTag(s[1:])
	case '+':
		return model.ProjectTag(s[1:])
	}
	// The pattern guarantees a \w+ key followed by ':'.
	k, v, _ := strings.Cut(s, ":")
	return model.DataTag(k, v)
}

// HasTag reports whether tag occurs in the record's description.
func HasTag(r model.Record, tag model.Tag) bool {
	for _, t := range FindMeta(r.Description) {
		if t == tag {
			return true
		}
	}
	return false
}

func HasContext(r model.Record, ctx string) bool {
	return HasTag(r, model.ContextTag(ctx))
}

func HasProject(r model.Record, project string) bool {
	return HasTag(r, model.ProjectTag(project))
}

// GetData returns the value of the first key:value tag with the given key.
func GetData(r model.Record, key string) (string, bool) {
	for _, t := range FindMeta(r.Description) {
		if t.Kind == model.Data && t.Name == key {
			return t.Value, true
		}
	}
	return "", false
}

// EscapeDescription inserts a backslash before the last character of every
// tag head (\@ctx, \+project, key\:value) so the text no longer yields tags.
func EscapeDescription(desc string) string {
	idx := tagRe.FindAllStringSubmatchIndex(desc, -1)
	if len(idx) == 0 {
		return desc
	}
	var b strings.Builder
	b.Grow(len(desc) + len(idx))
	last := 0
	for _, m := range idx {
		pos := m[2*headIdx+1] - 1
		b.WriteString(desc[last:pos])
		b.WriteByte('\\')
		last = pos
	}
	b.WriteString(desc[last:])
	return b.String()
}
