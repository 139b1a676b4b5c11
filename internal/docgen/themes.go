package docgen

import "github.com/brightsciences/lessonpress/internal/layout"

// Each template carries its own color identity so a stack of printed
// handouts can be told apart at a glance.
var (
	themeLessonGuide = layout.Theme{
		Banner: layout.RGB{R: 27, G: 94, B: 32},
		Tint:   layout.RGB{R: 232, G: 245, B: 233},
		Accent: layout.RGB{R: 56, G: 142, B: 60},
	}
	themeFiveE = layout.Theme{
		Banner: layout.RGB{R: 13, G: 71, B: 161},
		Tint:   layout.RGB{R: 227, G: 242, B: 253},
		Accent: layout.RGB{R: 25, G: 118, B: 210},
	}
	themeRubric = layout.Theme{
		Banner: layout.RGB{R: 74, G: 20, B: 140},
		Tint:   layout.RGB{R: 243, G: 229, B: 245},
		Accent: layout.RGB{R: 123, G: 31, B: 162},
	}
	themeExitTicket = layout.Theme{
		Banner: layout.RGB{R: 191, G: 54, B: 12},
		Tint:   layout.RGB{R: 255, G: 243, B: 224},
		Accent: layout.RGB{R: 230, G: 81, B: 0},
	}
)

func themeFor(t Template) layout.Theme {
	switch t {
	case TemplateFiveE:
		return themeFiveE
	case TemplateRubric:
		return themeRubric
	case TemplateExitTicket:
		return themeExitTicket
	}
	return themeLessonGuide
}

// phaseAccents gives each 5E phase its own underline color on the plan.
var phaseAccents = map[string]layout.RGB{
	"engage":    {R: 230, G: 81, B: 0},
	"explore":   {R: 0, G: 121, B: 107},
	"explain":   {R: 25, G: 118, B: 210},
	"elaborate": {R: 106, G: 27, B: 154},
	"evaluate":  {R: 46, G: 125, B: 50},
}
