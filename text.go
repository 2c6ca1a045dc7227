package main

// Built-in resume content, written to an empty database on first start and
// by import-resume when no file is given.

//nolint:gochecknoglobals // seed content
var (
	AboutMe = `I love building software that's both useful and fun, and I'm always curious about how things work behind the scenes.

Most of my projects start with a simple idea and turn into a chance to learn something new, whether it's exploring a
different language, experimenting with tools, or solving tricky problems.

When I'm not coding, you'll usually find me training **Muay Thai**, shooting pool with friends,
or chasing down a new challenge outside the screen.`

	ProjectOne = `A terminal-based email client built in Go with fuzzyfinder capabilities
using the Charmbracelet TUI framework and go-imap.`

	ProjectTwo = `A terminal-based music streaming application built in Go with an elegant TUI
interface, leveraging yt-dlp and mpv for YouTube Music playback directly from the command line.`

	ProjectThree = `A machine learning-powered web application that uses TF-IDF vectorization and cosine
similarity to recommend games based on content analysis, with interactive data visualizations and
real-time filtering by user reviews and ratings.`

	ProjectFour = `A responsive portfolio website built with Go, Gin and HTMX for
dynamic interactions, styled with Tailwind CSS.`
)

func defaultResume() map[string]any {
	return map[string]any{
		"name":          "Zach Kordas-Potter",
		"location":      "📍 Minneapolis, MN",
		"date_of_birth": "",
		"phone":         "",
		"email":         "✉️ hello@example.com",
		"about":         AboutMe,
		"languages": []map[string]string{
			{"language": "English", "level": "Native"},
		},
		"skills": []map[string]any{
			{"category": "Languages", "items": []string{"Go", "Python", "JavaScript", "SQL"}},
			{"category": "Web", "items": []string{"Gin", "HTMX", "Tailwind CSS", "Alpine.js"}},
			{"category": "Tools", "items": []string{"Git", "Docker", "Linux", "SQLite"}},
		},
		"skills_table": []map[string]string{
			{"skill": "Go", "level": "8/10"},
			{"skill": "Python", "level": "7/10"},
			{"skill": "JavaScript", "level": "6/10"},
		},
		"experience": []map[string]any{
			{
				"period":  "Aug 2023 - Present",
				"title":   "Presentation Expert",
				"company": "Target",
				"description": []string{
					"Executed over 300 merchandising transitions on tight timelines by organizing team workflows and adapting quickly to changing priorities",
					"Boosted operational efficiency by managing backroom inventory processes and streamlining communication between floor and logistics teams",
					"Enhanced pricing and signage accuracy across departments by standardizing daily checks and collaborating cross-functionally",
				},
			},
			{
				"period":  "Aug 2016 - Present",
				"title":   "Manager",
				"company": "Jasons Catered Events",
				"description": []string{
					"Improved client satisfaction by coordinating customized menus and ensuring all dietary requirements were accurately met",
					"Supported event technology by troubleshooting AV equipment and managing digital order tracking systems",
					"Maintained supply inventory and coordinated timely delivery between venues",
				},
			},
		},
		"resume_projects": []map[string]any{
			{"name": "Terminal Mail", "description": ProjectOne, "technologies": []string{"Go", "Bubble Tea", "go-imap"}, "status": "Completed"},
			{"name": "Terminal Music", "description": ProjectTwo, "technologies": []string{"Go", "yt-dlp", "mpv"}, "status": "Completed"},
			{"name": "Game Recommender", "description": ProjectThree, "technologies": []string{"Python", "scikit-learn"}, "status": "Completed"},
			{"name": "Portfolio", "description": ProjectFour, "technologies": []string{"Go", "Gin", "HTMX"}, "status": "In progress"},
		},
		"testimonials": []map[string]any{},
		"video_urls":   []string{},
		"pdf_files":    []map[string]string{},
	}
}
