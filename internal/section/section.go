// Package section holds the fixed, ordered list of resume sections shown by
// the carousel. The order is the left-to-right navigation order.
package section

// Section is one named page of resume content.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// Section IDs.
const (
	Personal     = "personal"
	About        = "about"
	Skills       = "skills"
	Experience   = "experience"
	Projects     = "projects"
	SkillLevels  = "skillsTable"
	Languages    = "languages"
	Testimonials = "testimonials"
	Contact      = "contact"
	Media        = "media"
)

//nolint:gochecknoglobals // fixed registry
var registry = [...]Section{
	{ID: Personal, Title: "Personal Info", Icon: "user"},
	{ID: About, Title: "About Me", Icon: "award"},
	{ID: Skills, Title: "Skills", Icon: "code"},
	{ID: Experience, Title: "Experience", Icon: "briefcase"},
	{ID: Projects, Title: "Projects", Icon: "star"},
	{ID: SkillLevels, Title: "Skill Levels", Icon: "award"},
	{ID: Languages, Title: "Languages", Icon: "users"},
	{ID: Testimonials, Title: "Testimonials", Icon: "star"},
	{ID: Contact, Title: "Contact", Icon: "mail"},
	{ID: Media, Title: "Media", Icon: "download"},
}

// Len returns the number of sections.
func Len() int {
	return len(registry)
}

// All returns a copy of the registry in navigation order.
func All() []Section {
	out := make([]Section, len(registry))
	copy(out, registry[:])
	return out
}

// At returns the section at index i.
func At(i int) (s Section, ok bool) {
	if i < 0 || i >= len(registry) {
		return s, false
	}
	return registry[i], true
}

// IndexOf returns the position of the section with the given id, or -1.
func IndexOf(id string) int {
	for i, s := range registry {
		if s.ID == id {
			return i
		}
	}
	return -1
}
