package llm

import "fmt"

// systemPrompt builds the persona instructions for a voice.
func systemPrompt(persona string) string {
	return fmt.Sprintf(`%s

You are writing a caption for a photo of yourself, spoken in the first person as the pet.
Rules:
- One or two sentences, at most 140 characters.
- No hashtags, no emoji, no quotation marks.
- Reply with the caption text only.`, persona)
}

// userPrompt is the instruction sent next to the photo.
const userPrompt = "Write your caption for this photo."
