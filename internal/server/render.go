package server

import (
	"net/http"

	"crewport/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	adminID, _ := r.Context().Value(contextKeyAdminID).(int64)
	adminUsername, _ := r.Context().Value(contextKeyAdminUsername).(string)

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAdmin:       adminID != 0,
			AdminUsername: adminUsername,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}
