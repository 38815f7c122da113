// Package landing serves the waitlist page and its no-script form fallback.
package landing

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/heijo-app/waitlist/config"
	"github.com/heijo-app/waitlist/config/router"
	"github.com/heijo-app/waitlist/domain/waitlist"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

const (
	pageTemplate = "index.html"

	StateInput     = "input"
	StateSubmitted = "submitted"
	StateInvalid   = "invalid"
	StateError     = "error"

	InvalidEmailMessage = "Please enter a valid email."
	FailureMessage      = "Something went wrong. Please try again."
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	Site           config.SiteConfig
	Letters        []string
	State          string
	Email          string
	Message        string
	InvalidMessage string
	FailureMessage string
	Year           int
}

func ParseTemplates() (*template.Template, error) {
	return template.New(pageTemplate).
		Funcs(template.FuncMap{
			// Staggers the logo letters by 0.2s each.
			"delay": func(i int) string { return strconv.FormatFloat(float64(i)*0.2, 'f', 1, 64) },
		}).
		ParseFS(templateFS, "templates/*.html")
}

// NewLandingController serves GET / and the form-encoded POST / used when scripts are off.
func NewLandingController(service waitlist.WaitlistService, site config.SiteConfig, limiter ratelimit.RateLimiter) *router.RESTController {
	templates := template.Must(ParseTemplates())

	return router.NewRESTController(
		"LandingController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			waitlist.RegisterValidators()
			rs.SetHTMLTemplate(templates)

			rs.AddGetHandler(c, nil, "", func(ctx *router.RequestContext) *router.ServiceResult {
				return render(http.StatusOK, site, StateInput, "", "")
			})

			rs.AddPostHandler(c, limiter, "", submitFormHandler(service, site))
		},
	)
}

func submitFormHandler(service waitlist.WaitlistService, site config.SiteConfig) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req waitlist.CreateWaitlistEntryRequest
		if err := ctx.ShouldBind(&req); err != nil {
			logger.Warn("Rejected form submission", "reason", waitlist.BindErrorMessage(err))
			return render(http.StatusBadRequest, site, StateInvalid, req.Email, InvalidEmailMessage)
		}

		if _, err := service.CreateEntry(ctx.Request.Context(), &req); err != nil {
			if apperrors.GetErrorType(err) == apperrors.ErrorTypeInvalidRequest {
				return render(http.StatusBadRequest, site, StateInvalid, req.Email, InvalidEmailMessage)
			}
			return render(http.StatusInternalServerError, site, StateError, req.Email, FailureMessage)
		}

		return render(http.StatusOK, site, StateSubmitted, "", "")
	}
}

func render(status int, site config.SiteConfig, state, email, message string) *router.ServiceResult {
	letters := make([]string, 0, len(site.Name))
	for _, r := range site.Name {
		letters = append(letters, string(r))
	}

	return router.HTMLResult(status, pageTemplate, pageData{
		Site:           site,
		Letters:        letters,
		State:          state,
		Email:          email,
		Message:        message,
		InvalidMessage: InvalidEmailMessage,
		FailureMessage: FailureMessage,
		Year:           time.Now().Year(),
	})
}
