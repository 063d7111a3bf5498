// Package docs renders the command tree for people: usage lines, category
// sections and a markdown reference.
package docs

import (
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/slashkit/internal/config"
	"github.com/keshon/slashkit/pkg/cmd"
)

// Section is one help heading with the callable commands listed under it.
type Section struct {
	Category config.Category
	Commands []*cmd.Node
}

// Sections groups every callable command of reg by the category of the
// extension owning its root, lightest category first.
func Sections(reg *cmd.Registry) []Section {
	byTitle := make(map[string]*Section)
	for _, root := range reg.All() {
		cat := config.CategoryFor(root.ExtensionName())
		s, ok := byTitle[cat.Title]
		if !ok {
			s = &Section{Category: cat}
			byTitle[cat.Title] = s
		}
		s.Commands = append(s.Commands, Leaves(root)...)
	}

	out := make([]Section, 0, len(byTitle))
	for _, s := range byTitle {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category.Weight != out[j].Category.Weight {
			return out[i].Category.Weight < out[j].Category.Weight
		}
		return out[i].Category.Title < out[j].Category.Title
	})
	return out
}

// Leaves returns the callable nodes at or below n in declaration order.
func Leaves(n *cmd.Node) []*cmd.Node {
	if n.Callable() {
		return []*cmd.Node{n}
	}
	var out []*cmd.Node
	for _, g := range n.Groups() {
		out = append(out, g.SubCommands()...)
	}
	for _, sub := range n.SubCommands() {
		out = append(out, Leaves(sub)...)
	}
	return out
}

// Usage renders "/tools numbers clamp <value> [min] [max]".
func Usage(n *cmd.Node) string {
	return "/" + n.FullName() + Arguments(n)
}

// Arguments renders the argument part of a usage line with a leading space,
// or nothing for commands without arguments.
func Arguments(n *cmd.Node) string {
	var sb strings.Builder
	for _, o := range n.Options() {
		if o.Required() {
			sb.WriteString(" <" + o.Name + ">")
		} else {
			sb.WriteString(" [" + o.Name + "]")
		}
	}
	return sb.String()
}

var markdown = template.Must(template.New("reference").Funcs(template.FuncMap{
	"usage": Usage,
}).Parse(`# Commands
{{range .}}
## {{.Category.Title}}
{{range .Commands}}
- **` + "`{{usage .}}`" + `** - {{.Description}}
{{- range .Options}}
  - ` + "`{{.Name}}`" + ` ({{.Signature}}{{if .Required}}, required{{end}}){{if .Description}}: {{.Description}}{{end}}
{{- end}}
{{- end}}
{{end}}`))

// WriteMarkdown writes a markdown reference of every callable command.
func WriteMarkdown(w io.Writer, reg *cmd.Registry) error {
	return markdown.Execute(w, Sections(reg))
}
