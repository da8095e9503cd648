package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"

	"yatube/auth"
	"yatube/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

var viewNames = []string{
	"index",
	"group_list",
	"profile",
	"post_detail",
	"create_post",
	"follow",
	"signup",
	"login",
	"404",
	"403csrf",
	"500",
}

func loadTemplates() map[string]*template.Template {
	funcs := template.FuncMap{
		"truncate": utils.Truncate,
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	}
	templates := make(map[string]*template.Template)
	for _, name := range viewNames {
		templates[name] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(
				templatesFS,
				"templates/layout.html",
				"templates/"+name+".html",
			),
		)
	}
	return templates
}

// render executes a view inside the layout. The context mapping is
// extended with the session user and the CSRF field every form needs.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, ctx map[string]interface{}) {
	if ctx == nil {
		ctx = map[string]interface{}{}
	}
	ctx["User"] = auth.UserFrom(r.Context())
	ctx["CSRFField"] = csrf.TemplateField(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates[name].ExecuteTemplate(w, "layout", ctx); err != nil {
		logrus.WithError(err).WithField("template", name).Error("template execution failed")
	}
}

// NotFound renders the dedicated 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.metrics.BadRequests.WithLabelValues("not_found").Inc()
	h.render(w, r, http.StatusNotFound, "404", map[string]interface{}{
		"Path": r.URL.Path,
	})
}

// CSRFFailure renders the dedicated 403 page for rejected tokens.
func (h *Handlers) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	h.metrics.BadRequests.WithLabelValues("csrf_failure").Inc()
	h.render(w, r, http.StatusForbidden, "403csrf", nil)
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("handler failed")
	h.render(w, r, http.StatusInternalServerError, "500", nil)
}
