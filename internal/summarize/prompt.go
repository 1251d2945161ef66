// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"text/template"
)

// sectionPromptTmpl asks for a bullet summary of one section.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`You are a helpful research assistant.

Summarize the following '{{.Title}}' section of a research paper in 4–6 bullet points:

"""{{.Content}}"""`))

// analysisPromptTmpl asks for limitations, gaps, and a proposed study for
// the user's research question.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`
You are an expert academic research assistant.

The following is a summarized paper:
"""{{.Summary}}"""

And here is a research question:
"{{.Question}}"

Please:
1. List 3–5 limitations in the original paper.
2. Identify 3 gaps or unexplored issues.
3. Suggest how this research question can be explored in a new study.

Use bullet points.
`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
