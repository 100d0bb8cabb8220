package constant

import "strings"

// HeaderVariants are the header layouts a page can be generated with.
var HeaderVariants = map[string]string{
	"header-centered": `Transparent header with logo centered above the menu.
Header must use absolute, top-0, left-0, w-full, z-10 to be placed over Hero section.
Logo: use class="mx-auto max-w-[250px] max-h-[100px]" inside header container.
Below the logo: centered navigation inside max-w-[1200px] mx-auto.
Navigation: use flex justify-center gap-6.
Nav items:
  - Contained (e.g., px-4 py-2 rounded-full bg-white/10 or similar)
  - Hover effects: background opacity change (hover:bg-opacity-20).
  - If background is dark: text-white.
  - Active link: background with logo's secondary color.
Use Tailwind for spacing, padding, and full mobile responsiveness.`,

	"header-default": `Transparent header with logo left, nav right.
Logo: use class="max-w-[250px] max-h-[100px]" and same height to prevent oversize.
Underline active nav item using logo's secondary color.
Max width: 1200px (use max-w-[1200px] mx-auto).
If background is dark use text-white and z-10, relative.`,
}

// HeroVariants are the hero layouts a page can be generated with.
var HeroVariants = map[string]string{
	"hero-centered-overlay": `Background image with dark overlay both same size.
Heading and CTA justify and align centered over image.
Max height 100vh including header.
Use bg-fixed and white text over overlay.
Use padding.
Center all text with flex flex-col justify-center items-center text-center.
Text must use text-white z-10 relative.
All elements inside should have white text color over overlay.
CTA button must include hover:opacity-90.`,

	"hero-left-text-right-img": `Split layout: left column text, right image.
Use responsive flex.
Text includes headline, subheading, CTA button.
Image should cover full height on right.
CTA button must include hover:opacity-90.`,

	"hero-text-only": `Hero section with text only.
Center all text with flex flex-col justify-center items-center text-center.
Use padding. Heading and CTA centered using Tailwind.
CTA button must include hover:opacity-90.`,
}

const (
	PromoSection = `Light background. All items Centered using Tailwind.
Two columns: heading on left, paragraph on right. max-w-[1200px] mx-auto, py-16.
Message should reflect brand promise or value.`

	FeaturesSection = `Flex aligned and justify - center of 4 cards.
Each card uses Font Awesome icons (or all cards use images).
Card content includes icon/image, bold title, and short description.
Content inside cards center aligned with flex flex-col items-center text-center.
If using Font Awesome icons on dark background, icons should be white (text-white).
All cards must use same consistent height.
Card overflow should be hidden to avoid layout shifts.
Wrap inside max-w-[1200px] mx-auto with py-16.
Use flex layout for mobile responsiveness (flex-col sm:flex-wrap as needed).`

	PortfolioSection = `Create a section titled "My Portfolio" centered at the top.
Overall section:
- Wrap everything inside max-w-[1200px] mx-auto
- Add horizontal padding px-4 or px-6
- Add vertical spacing: py-16
- Center-align all card content`

	ContactSection = `White background.
Center-aligned large serif heading.
Short description and CTA button.
All centered using Tailwind.
Use py-16 and max-w-[1200px].`

	FooterSection = `Muted background (light from logo) full width.
Left side: copyright.
Right: social media icons with class text-xl or text-2xl.
Use white text if background is dark. Add hover effects (hover:opacity-80).
Use flex justify-between in max-w-[1200px] container.
Use flex layout for mobile responsiveness (flex-col sm:flex-row as needed).`
)

// PatternOptions lists, per section, the layout patterns rotated through on each
// generation. Sections without an entry are described by SectionCatalog alone.
var PatternOptions = map[string][]string{
	"header":    {"header-centered", "header-default"},
	"hero":      {"hero-centered-overlay", "hero-left-text-right-img", "hero-text-only"},
	"promo":     {"promo"},
	"features":  {"features"},
	"portfolio": {"portfolio"},
	"contact":   {"contact"},
	"footer":    {"footer"},
}

var singleTemplates = map[string]string{
	"promo":     PromoSection,
	"features":  FeaturesSection,
	"portfolio": PortfolioSection,
	"contact":   ContactSection,
	"footer":    FooterSection,
}

// AutoSelectPatterns picks, for every section with options, the option after the one
// used last time. A section seen for the first time, or whose previous pattern is no
// longer offered, gets its first option.
func AutoSelectPatterns(previous map[string]string, sections []string) map[string]string {
	next := make(map[string]string, len(sections))
	for _, section := range sections {
		options := PatternOptions[section]
		if len(options) == 0 {
			continue
		}
		index := -1
		if current, ok := previous[section]; ok {
			for i, o := range options {
				if o == current {
					index = i
					break
				}
			}
		}
		next[section] = options[(index+1)%len(options)]
	}
	return next
}

// SectionLayout returns the layout instructions for section under pattern, falling back
// to the first pattern and then to the catalog description.
func SectionLayout(section, pattern string) string {
	switch section {
	case "header":
		if t, ok := HeaderVariants[pattern]; ok {
			return t
		}
		return HeaderVariants[PatternOptions["header"][0]]
	case "hero":
		if t, ok := HeroVariants[pattern]; ok {
			return t
		}
		return HeroVariants[PatternOptions["hero"][0]]
	}
	if t, ok := singleTemplates[section]; ok {
		return t
	}
	return SectionCatalog[section]
}

func sectionTitle(section string) string {
	if section == "" {
		return section
	}
	return strings.ToUpper(section[:1]) + section[1:]
}
