package formengine

import (
	"html/template"
	"io"
)

var formTmpl = template.Must(template.New("form").Parse(`<form method="post" enctype="multipart/form-data">
{{- range . }}
  <div class="field">
    <label for="{{ .Name }}">{{ .Label }}{{ if .Required }} *{{ end }}</label>
    {{- if eq .Control "file" }}
    {{- if .PreviewURL }}
    <img src="{{ .PreviewURL }}" alt="{{ .Label }}">
    {{- end }}
    <input type="file" id="{{ .Name }}" name="{{ .Name }}" accept="image/*">
    {{- else }}
    <input type="{{ .Control }}" id="{{ .Name }}" name="{{ .Name }}" value="{{ .Value }}"{{ if .Required }} required{{ end }}>
    {{- end }}
  </div>
{{- end }}
  <button type="submit">Save</button>
</form>
`))

// RenderHTML writes the form as an HTML fragment.
func (f *Form) RenderHTML(w io.Writer) error {
	return formTmpl.Execute(w, f.Inputs())
}
