package model

// Persona is a configured tone/style profile used to steer AI rewriting
// for a category.
type Persona struct {
	Name  string
	Tone  string
	Style string
	Focus string
}
