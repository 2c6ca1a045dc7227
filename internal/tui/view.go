package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/section"
)

type styles struct {
	title   lipgloss.Style
	active  lipgloss.Style
	tab     lipgloss.Style
	heading lipgloss.Style
	faint   lipgloss.Style
	status  lipgloss.Style
	chat    lipgloss.Style
	user    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205")).Padding(0, 1),
		tab:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		faint:   lipgloss.NewStyle().Faint(true),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		chat:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		user:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	}
}

// markdown renders Markdown with glamour, caching the renderer per width.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown() *markdown {
	return &markdown{}
}

func (md *markdown) render(src string, width int) string {
	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return src
		}
		md.renderer, md.width = r, width
	}
	out, err := md.renderer.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render(m.data.Personal.Name))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	current, _ := section.At(m.nav.Index())
	b.WriteString(m.styles.heading.Render(current.Title))
	b.WriteString("\n\n")
	b.WriteString(m.sectionBody(current.ID))
	b.WriteString("\n\n")
	b.WriteString(m.dots())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}
	if m.chatOpen {
		b.WriteString(m.chatView())
		b.WriteString("\n")
	}
	b.WriteString(m.styles.faint.Render("←/→ navigate · 1-0 jump · drag to swipe · r refresh · c chat · q quit"))
	return b.String()
}

func (m Model) tabs() string {
	all := section.All()
	parts := make([]string, len(all))
	for i, s := range all {
		if i == m.nav.Index() {
			parts[i] = m.styles.active.Render(s.Title)
		} else {
			parts[i] = m.styles.tab.Render(s.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) dots() string {
	dots := make([]string, section.Len())
	for i := range dots {
		dots[i] = "○"
		if i == m.nav.Index() {
			dots[i] = "●"
		}
	}
	return strings.Join(dots, " ")
}

func (m Model) sectionBody(id string) string {
	d := m.data
	var b strings.Builder
	switch id {
	case section.Personal:
		p := d.Personal
		for _, line := range []string{p.Location, p.DateOfBirth, p.Phone, p.Email} {
			b.WriteString(line + "\n")
		}
	case section.About:
		b.WriteString(m.markdown.render(d.About, m.width))
	case section.Skills:
		for _, g := range d.Skills {
			fmt.Fprintf(&b, "%s: %s\n", m.styles.heading.Render(g.Category), strings.Join(g.Items, ", "))
		}
	case section.Experience:
		for _, e := range d.Experience {
			fmt.Fprintf(&b, "%s  %s · %s\n", m.styles.faint.Render(e.Period), e.Title, e.Company)
			for _, line := range e.Description {
				fmt.Fprintf(&b, "  • %s\n", line)
			}
		}
	case section.Projects:
		for _, p := range d.Projects {
			fmt.Fprintf(&b, "%s [%s]\n  %s\n", m.styles.heading.Render(p.Name), p.Status, oneLine(p.Description))
			if len(p.Technologies) > 0 {
				fmt.Fprintf(&b, "  %s\n", m.styles.faint.Render(strings.Join(p.Technologies, " · ")))
			}
		}
	case section.SkillLevels:
		for _, s := range d.SkillLevels {
			bar := strings.Repeat("█", s.Percent()/10) + strings.Repeat("░", 10-s.Percent()/10)
			fmt.Fprintf(&b, "%-16s %s %s\n", s.Skill, bar, s.Level)
		}
	case section.Languages:
		for _, l := range d.Languages {
			fmt.Fprintf(&b, "%s: %s\n", l.Language, l.Level)
		}
	case section.Testimonials:
		for _, t := range d.Testimonials {
			fmt.Fprintf(&b, "%s\n\"%s\"\n  %s, %s at %s\n\n", strings.Repeat("★", t.Rating), t.Text, t.Name, t.Position, t.Company)
		}
	case section.Contact:
		fmt.Fprintf(&b, "%s\n%s\n\nPress c to chat.\n", d.Personal.Email, d.Personal.Phone)
	case section.Media:
		for _, f := range d.PDFFiles {
			fmt.Fprintf(&b, "📄 %s  %s\n", f.Name, m.styles.faint.Render(f.URL))
			switch {
			case f.Pages > 0:
				fmt.Fprintf(&b, "   %d pages\n", f.Pages)
			case f.Paragraphs > 0:
				fmt.Fprintf(&b, "   %d paragraphs\n", f.Paragraphs)
			}
			if f.Excerpt != "" {
				fmt.Fprintf(&b, "   %s\n", m.styles.faint.Render(oneLine(f.Excerpt)))
			}
		}
		for _, v := range d.Videos {
			fmt.Fprintf(&b, "▶ %s\n", v)
		}
	}
	if b.Len() == 0 {
		return m.styles.faint.Render("Nothing here yet.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) chatView() string {
	var b strings.Builder
	for _, e := range m.chat.Transcript() {
		who := "Me"
		if e.Sender == chat.SenderUser {
			who = m.styles.user.Render("You")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", m.styles.faint.Render(e.Time.Format("15:04")), who, e.Text)
	}
	if m.sending {
		b.WriteString(m.styles.faint.Render("typing...") + "\n")
	}
	b.WriteString("> " + m.input + "█")
	return m.styles.chat.Render(b.String())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

