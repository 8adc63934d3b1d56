package sources

import (
	"fmt"

	"github.com/kerbaras/herogen/pkg/data"
)

const scriptTemplate = `Create a thrilling 10-page comic book script featuring a superhero based on the user's image.

Here are the details:
- Hero Name: %s
- Superpower: %s
- Villain: %s
- Setting: %s
- Tone: Action-packed, cinematic, slightly humorous.

For each page, provide:
1. A visual description for the image generator (focus on action, angle, lighting).
2. A short, punchy line of dialogue or narration text.

Return ONLY the JSON object adhering to this schema.`

const panelTemplate = `Comic book panel. %s style.
Scene: %s.
Character must strongly resemble the person in the reference image provided, wearing a superhero costume.
High quality, detailed, cinematic lighting, 4k resolution.`

func scriptPrompt(s data.Settings) string {
	return fmt.Sprintf(scriptTemplate, s.HeroName, s.Superpower, s.Villain, s.Setting)
}

func panelPrompt(description, artStyle string) string {
	return fmt.Sprintf(panelTemplate, artStyle, description)
}
