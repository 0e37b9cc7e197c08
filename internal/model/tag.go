package model

import "fmt"

// TagKind identifies the variant of a Tag.
type TagKind int

const (
	// Project is rendered as +name.
	Project TagKind = iota + 1
	// Context is rendered as @name.
	Context
	// Data is rendered as key:value.
	Data
)

// Tag is metadata embedded in a record description.
// Name holds the project, the context or the data key; Value is only set for Data.
type Tag struct {
	Kind  TagKind
	Name  string
	Value string
}

func ProjectTag(name string) Tag { return Tag{Kind: Project, Name: name} }

func ContextTag(name string) Tag { return Tag{Kind: Context, Name: name} }

func DataTag(key, value string) Tag { return Tag{Kind: Data, Name: key, Value: value} }

func (t Tag) String() string {
	switch t.Kind {
	case Project:
		return "+" + t.Name
	case Context:
		return "@" + t.Name
	case Data:
		return t.Name + ":" + t.Value
	default:
		panic(fmt.Sprintf("model: unknown tag kind %d", t.Kind))
	}
}
