// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"text/template"
)

var documentPromptTmpl = template.Must(template.New("document").Parse(`You are a helpful research assistant.

Summarize the following research paper ('{{.Name}}') in one short paragraph followed by 3–5 bullet points covering its aim, method, and key findings:

"""{{.Text}}"""`))

var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are an expert academic research assistant writing a literature review.
{{if .Topic}}
The review should focus on this topic:
"{{.Topic}}"
{{end}}
Below are summaries of {{len .Documents}} papers. Each is labelled with the in-text citation to use for it.
{{range .Documents}}
[{{.Citation}}] {{.Title}}
"""{{.Summary}}"""
{{end}}
Please write a synthesized literature review that:
1. Groups the papers by common themes rather than describing them one by one.
2. Compares methods and findings, noting agreements and contradictions.
3. Identifies gaps that future work could address.
4. Cites papers in the text using exactly the labels given above, e.g. ({{(index .Documents 0).Citation}}).

End with a "References" list containing one line per paper.
`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
