package extractor

import "fmt"

const emailPrompt = `You are an intelligent CRM data extractor.
Analyze the email content below and extract:
- Name (sender or mentioned contact)
- Company (organization name)
- Follow_up_Date (any date, day, or time mentioned for a follow-up)
- Notes (short summary of the email purpose)

If a field is not mentioned, return it as null.

Return valid JSON only, no markdown fences or other text, in exactly this shape:
{
  "Name": "Person Name",
  "Company": "Company Name",
  "Follow_up_Date": "Date/Day/Time",
  "Notes": "Short summary of the email"
}

Email content:
%s`

const voicePrompt = `You are a professional CRM assistant.
Analyze the following conversation or meeting note and extract:
- Name (person mentioned)
- Company (organization or client name)
- Follow_up_Date (specific or relative time)
- Notes (main discussion summary)

If a field is not mentioned, return it as null.

Return valid JSON only, no markdown fences or other text, in exactly this shape:
{
  "Name": "Person Name",
  "Company": "Company Name",
  "Follow_up_Date": "Date or Time",
  "Notes": "Brief summary"
}

Conversation text:
%s`

// BuildPrompt embeds text verbatim at the end of the source's instruction template.
func BuildPrompt(source Source, text string) string {
	tmpl := emailPrompt
	if source == SourceVoice {
		tmpl = voicePrompt
	}
	return fmt.Sprintf(tmpl, text)
}
