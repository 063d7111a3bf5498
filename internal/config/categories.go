package config

// Category is the help heading a command extension is listed under.
type Category struct {
	Title  string
	Weight int
}

var Categories = map[string]Category{
	"core":  {Title: "🕯️ Information", Weight: 0},
	"tools": {Title: "📢 Utilities", Weight: 10},
	"fun":   {Title: "🎲 Gameplay", Weight: 20},
}

// CategoryFor returns the category of an extension. Unknown extensions sort
// last under a generic heading.
func CategoryFor(extension string) Category {
	if c, ok := Categories[extension]; ok {
		return c
	}
	return Category{Title: "🛠️ Other", Weight: 100}
}
