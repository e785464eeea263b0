// Package prompt builds the instructions sent to the model and holds the bot's user-facing texts.
package prompt

import (
	"fmt"

	"github.com/knoguchi/themefather/internal/llm"
)

const systemTemplate = `You are a specialized theme generator that strictly follows templates.
Your sole purpose is to generate theme configurations by modifying values while preserving the exact structure and format of the template.

STRICT RULES:
1. Output MUST be EXACTLY in the same format as the template below
2. Every line MUST follow the pattern "key: value"
3. Each key-value pair MUST be on its own line
4. Never concatenate or combine values, and never split one value across lines
5. Every color value MUST be a complete 6-digit hex code (e.g., #FF5500)
6. Preserve ALL whitespace and indentation exactly as shown
7. Do not add ANY explanatory text or comments
8. Do not add or remove ANY lines from the template
9. Only the text after each colon may change

Here is the exact template to follow. Replace ONLY the values after each colon:
` + "```" + `
%s
` + "```" + `

IMPORTANT: Your entire response must be an exact copy of this template with only the values changed. Nothing more, nothing less.`

const userTemplate = `Create a theme matching this description:

%s

Keep every field name exactly as it is and only change the values. Template:
%s`

// Build returns the system and user messages for one synthesis call.
// The description is passed through verbatim; it may be empty.
func Build(template, description string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemMessage(template)},
		{Role: llm.RoleUser, Content: fmt.Sprintf(userTemplate, description, template)},
	}
}

// SystemMessage returns the format-preserving instruction with the template embedded.
func SystemMessage(template string) string {
	return fmt.Sprintf(systemTemplate, template)
}
