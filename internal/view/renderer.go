// Package view is the rendering collaborator boundary: handlers hand over a
// view name and a data bag and never depend on how the document is produced.
package view

import (
	"net/http"

	"taskdiary/internal/common"
)

type Renderer interface {
	Render(w http.ResponseWriter, name string, data map[string]interface{})
}

// JSONRenderer reflects the view name and data bag as a JSON document. It
// stands in for an HTML template engine, which is out of scope here.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type document struct {
	View string                 `json:"view"`
	Data map[string]interface{} `json:"data"`
}

func (r *JSONRenderer) Render(w http.ResponseWriter, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	common.RespondWithJSON(w, http.StatusOK, document{View: name, Data: data})
}
