package constant

import (
	"fmt"
	"strings"
)

const (
	// GenerationTemperature leaves a little room for layout variety on first generation.
	GenerationTemperature = 0.2

	GeneratePagePrompt = `You are a professional HTML landing page developer.

Generate clean, modern, responsive HTML using Tailwind CSS and Font Awesome CDN in <head></head>.
Use only the provided: project name, description, logo, color palette, and image URLs.
Your output must strictly follow the layout and styling instructions.

Use Font Awesome icons where suitable, for example feature cards, social links (e.g., <i class="fab fa-facebook"></i>) and contact sections (phone, location, email icons).

Visual Rules:
	- Use only the provided colors for CTAs, headings, links, and backgrounds as inline CSS.
	- Overlay content (Hero, Header) must have text-white and z-10 if background is dark.
	- Assign unique HTML id attributes to all layout and content elements.
		- Top-level blocks (<section>, <header>, <footer>, <article>) must have: id="<section-name>"
		- Repeating blocks: wrap in a parent with data-array="true"
		- Inner elements must follow: id="<section>-<type>-<index>"
			- type: text, img, link
			- Examples:
				<section id="hero">
					<h2 id="hero-text-1">Welcome</h2>
					<a id="hero-link-1" href="#">Contact</a>
					<img id="hero-img-1" src="..." />
				</section>
	- Do not use background and text same color, text always should be readable.
	- All sections should use horizontal padding (px-4 or px-6).
	- Must be responsive for mobile, tablet, and desktop.

Output Instructions:
	- Use only Tailwind utility classes
	- Return raw valid HTML only
	- Do NOT include Markdown, code fences or comments`

	SystemEditPrompt = `You are a professional HTML landing page developer.

Edit the provided HTML block based on the user's instruction using Tailwind CSS and inline styles.

You may:
- Change texts, links, images, inline styles, and Tailwind classes
- Edit <style> content in <head> (e.g. :root variables and CSS class rules)
- Remove or modify entire layout blocks (<section>, <header>, <footer>, <article>) if the instruction explicitly says so
- Add or remove repeated elements inside containers with data-array="true"

You must not:
- Restructure HTML layout or rename ID patterns
- Introduce new layout blocks unless replacing an existing one

ID rules:
- Top-level blocks must have unique IDs (e.g. id="hero")
- Inner elements must follow: <section>-<type>-<index> (e.g. hero-text-1, footer-img-2)

Style rules:
- Use Tailwind utility classes only (no Tailwind color tokens)
- Use inline style for provided colors (e.g. style="color: #123456")
- Use text-white and z-10 for overlays on dark backgrounds
- Use px-4 or px-6 on all sections
- Keep layout responsive on all devices

Output:
Return only valid raw updated HTML or <style> content if instructed.
No comments, Markdown, or explanations.`
)

// SectionCatalog lists the section keys a page may be built from.
var SectionCatalog = map[string]string{
	"header":       "Logo and menus.",
	"hero":         "Intro with headline, subtext, CTA, and background.",
	"value_prop":   "Short bullet points showing benefits.",
	"promo":        "Brand promise or value in a heading and a paragraph.",
	"features":     "Key features that make your product stand out.",
	"testimonials": "Customer feedback and quotes.",
	"cta":          "Strong invitation to take action.",
	"about":        "Team or personal bio and values.",
	"services":     "List of offered services.",
	"portfolio":    "Showcase of past work.",
	"social-proof": "Logos of clients or partners.",
	"faq":          "Frequently asked questions.",
	"pricing":      "Plans and prices.",
	"contact":      "Contact details and a message form.",
	"footer":       "Links, contacts and copyright.",
}

// RequiredSections are always part of a generated page.
var RequiredSections = []string{"header", "hero", "footer"}

type PageBrief struct {
	ProjectName string
	Description string
	Goal        string
	WebsiteType string
	LogoURL     string
	Colors      []string
	Images      []string
	Sections    []string
	Patterns    map[string]string
}

// NormalizeSections drops unknown keys and duplicates, and makes sure header, hero
// and footer are present with header first and footer last.
func NormalizeSections(sections []string) []string {
	seen := map[string]bool{}
	middle := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.ToLower(strings.TrimSpace(s))
		if _, ok := SectionCatalog[s]; !ok || seen[s] {
			continue
		}
		seen[s] = true
		if s == "header" || s == "hero" || s == "footer" {
			continue
		}
		middle = append(middle, s)
	}

	out := make([]string, 0, len(middle)+3)
	out = append(out, "header", "hero")
	out = append(out, middle...)
	return append(out, "footer")
}

// BuildPagePrompt renders the user message for first generation.
func BuildPagePrompt(b PageBrief) string {
	var sb strings.Builder

	sb.WriteString("Generate a modern, responsive landing page using Tailwind CSS cdn(<script src=\"https://cdn.tailwindcss.com\"></script>) in <head></head>.\n\n")

	if len(b.Colors) > 0 {
		sb.WriteString("Use inline <style> for defining these custom colors:\n")
		for i, c := range b.Colors {
			fmt.Fprintf(&sb, "  - %s (color %d)\n", c, i+1)
		}
		sb.WriteString("\nDefine color utilities like .bg-primary, .text-primary, .text-muted, etc. in <style>, and use them throughout the HTML.\n")
	}
	sb.WriteString("Use Tailwind classes for layout, spacing, and typography.\n")
	sb.WriteString("Use inline CSS only for background-image and sizes where Tailwind does not support.\n\n---\n\n")

	fmt.Fprintf(&sb, "Project name: **%s**\n", b.ProjectName)
	fmt.Fprintf(&sb, "Description: **%s**\n", b.Description)
	if b.WebsiteType != "" {
		fmt.Fprintf(&sb, "Website type: **%s**\n", b.WebsiteType)
	}
	if b.LogoURL != "" {
		fmt.Fprintf(&sb, "Logo URL: %s\n", b.LogoURL)
	}
	if b.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", b.Goal)
	}

	if len(b.Images) > 0 {
		sb.WriteString("\n---\n\nUse these royalty-free image URLs creatively:\n")
		for i, u := range b.Images {
			fmt.Fprintf(&sb, "Image %d: %s\n", i+1, u)
		}
	}

	sb.WriteString("\n---\n\nLayout Structure:\n")
	for _, s := range NormalizeSections(b.Sections) {
		fmt.Fprintf(&sb, "\n<!-- %s Section -->\n%s\n", sectionTitle(s), SectionLayout(s, b.Patterns[s]))
	}

	return sb.String()
}

const domainIdeasPrompt = `You are a startup branding assistant.

Based on the following short project description, generate 10 creative and available domain name ideas.
Each idea should include a full domain (name + TLD), such as: "cryptoflow.ai", "taskmate.app", etc.

Only return a plain list. Do NOT include explanations.

Project description: "%s"`

// BuildDomainIdeasPrompt asks for ten name.tld ideas, one per line.
func BuildDomainIdeasPrompt(description string) string {
	return fmt.Sprintf(domainIdeasPrompt, strings.TrimSpace(description))
}
