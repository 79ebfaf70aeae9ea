package common

import (
	"bytes"
	"html/template"
)

// ExecuteTemplate renders source with data. Values are HTML escaped because
// rendered templates are sent as email bodies.
func ExecuteTemplate(source string, data any) (string, error) {
	tmpl, err := template.New("template").Parse(source)
	if err != nil {
		return "", err
	}

	buffer := bytes.NewBuffer(nil)
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", err
	}

	return buffer.String(), nil
}
