package config

// Source identifies where a setting's resolved value came from.
type Source string

const (
	SourceDefault     Source = "default"
	SourceFile        Source = "file"
	SourceEnvironment Source = "environment"
)

// Item is the exported, display-safe view of one resolved setting.
// Secret settings carry the fixed placeholder instead of their value; the
// underlying stored value is never touched.
type Item struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source Source `json:"from"`
}
