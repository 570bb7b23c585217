// Package topics adds free-form help topics to a cobra command tree. Topics
// are read from a filesystem, usually embedded, and served by a replacement
// help command: `app help <topic>`, `app help --flag` and `app help topics`.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// optionPrefix marks topics that document a flag
const optionPrefix = "option-"

// Topic is one help page
type Topic struct {
	Name    string
	Title   string
	Path    string
	Content string
}

// IsOption reports whether the topic documents a command line flag
func (t *Topic) IsOption() bool {
	return strings.HasPrefix(t.Name, optionPrefix)
}

// Options configures a Manager
type Options struct {
	// Extensions accepted as topics, [".md", ".txt"] when empty
	Extensions []string
	// Renderer defaults to PlainRenderer
	Renderer Renderer
}

// Manager holds the loaded topics
type Manager struct {
	topics   map[string]*Topic
	renderer Renderer
}

// Load reads every topic under source. The file name without its extension
// is the topic name; directories only group files.
func Load(source fs.FS, opts Options) (*Manager, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md", ".txt"}
	}
	m := &Manager{topics: make(map[string]*Topic), renderer: opts.Renderer}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	if source == nil {
		return m, nil
	}

	err := fs.WalkDir(source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := path.Ext(p)
		if !slices.Contains(exts, ext) {
			return nil
		}
		data, err := fs.ReadFile(source, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{
			Name:    name,
			Title:   titleOf(string(data)),
			Path:    p,
			Content: string(data),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load help topics: %w", err)
	}
	return m, nil
}

// titleOf returns the first markdown heading, if any
func titleOf(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			return ""
		}
	}
	return ""
}

// Lookup finds a topic by name. Flag spellings (--dry-run) resolve to the
// option- topic for that flag.
func (m *Manager) Lookup(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics[optionPrefix+name]
	return t, ok
}

// Names returns the topic names in order
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render formats a topic for the terminal
func (m *Manager) Render(t *Topic) string {
	return m.renderer.Render(t.Content, path.Ext(t.Path))
}

// WriteIndex prints the topic list, general topics first, then flags
func (m *Manager) WriteIndex(w io.Writer, app string) {
	names := m.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "No help topics available.")
		return
	}

	var general, options []*Topic
	for _, name := range names {
		if t := m.topics[name]; t.IsOption() {
			options = append(options, t)
		} else {
			general = append(general, t)
		}
	}

	_, _ = fmt.Fprintln(w, "Available help topics:")
	if len(general) > 0 {
		_, _ = fmt.Fprintln(w, "\nGeneral topics:")
		for _, t := range general {
			writeRow(w, t.Name, t.Title)
		}
	}
	if len(options) > 0 {
		_, _ = fmt.Fprintln(w, "\nOption topics:")
		for _, t := range options {
			writeRow(w, "--"+strings.TrimPrefix(t.Name, optionPrefix), t.Title)
		}
	}
	_, _ = fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", app)
}

func writeRow(w io.Writer, name, title string) {
	if title == "" {
		_, _ = fmt.Fprintf(w, "  %s\n", name)
		return
	}
	_, _ = fmt.Fprintf(w, "  %-16s %s\n", name, title)
}

// Install loads the topics and replaces the root's help command with one
// that serves them, falling back to command help for anything else.
func Install(root *cobra.Command, source fs.FS, opts Options) (*Manager, error) {
	m, err := Load(source, opts)
	if err != nil {
		return nil, err
	}
	commandHelp := root.HelpFunc()

	help := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf("Help for any command or topic.\n\nList the topics with:\n  %s help topics",
			root.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			candidates := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					candidates = append(candidates, c.Name())
				}
			}
			candidates = append(candidates, m.Names()...)
			return candidates, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			switch {
			case len(args) == 0:
				commandHelp(root, nil)
			case args[0] == "topics":
				m.WriteIndex(cmd.OutOrStdout(), root.Name())
			default:
				if t, ok := m.Lookup(args[0]); ok {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), m.Render(t))
					return
				}
				if target, _, err := root.Find(args); err == nil && target != nil {
					commandHelp(target, nil)
					return
				}
				commandHelp(root, args)
			}
		},
	}

	for _, c := range root.Commands() {
		if c.Name() == "help" {
			root.RemoveCommand(c)
			break
		}
	}
	root.AddCommand(help)
	root.SetHelpCommand(help)
	return m, nil
}
