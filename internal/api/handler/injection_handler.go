package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/api/metrics"
	"github.com/authlab/members/internal/core/domain"
	"github.com/authlab/members/internal/core/ports"
)

const probeParam = "user"

type probePage struct {
	Detected bool
	User     string
}

// InjectionHandler demonstrates that an identifier which is not a plain
// string never reaches the store.
type InjectionHandler struct {
	directory ports.UserDirectory
	log       zerolog.Logger
}

func NewInjectionHandler(directory ports.UserDirectory, log zerolog.Logger) *InjectionHandler {
	return &InjectionHandler{directory: directory, log: log}
}

// Probe looks up the user named in the query string.
func (h *InjectionHandler) Probe(c echo.Context) error {
	raw, present := queryValue(c.QueryParams(), probeParam)
	if !present {
		return c.Render(http.StatusOK, "probe.html", probePage{})
	}

	user, err := h.validate(c, raw)
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		metrics.InjectionAttemptsTotal.Inc()
		h.log.Warn().Err(verr).Str("ip", c.RealIP()).Msg("injection attempt rejected")
		return c.Render(http.StatusBadRequest, "probe.html", probePage{Detected: true})
	}

	users, err := h.directory.FindByName(c.Request().Context(), user)
	if err != nil {
		return err
	}
	h.log.Info().Str("user", user).Int("matches", len(users)).Msg("lookup")

	return c.Render(http.StatusOK, "probe.html", probePage{User: user})
}

func (h *InjectionHandler) validate(c echo.Context, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", domain.NewValidationError(domain.Violation{Field: probeParam, Rule: domain.RuleString})
	}
	req := probeRequest{User: s}
	if err := c.Validate(&req); err != nil {
		return "", err
	}
	return req.User, nil
}

// queryValue decodes name the way an extended query-string parser would:
// a single occurrence is a string, repeated occurrences are a list, and
// bracketed keys such as user[$ne] form an object. It reports false when
// the parameter is absent or empty.
func queryValue(values url.Values, name string) (any, bool) {
	nested := map[string]any{}
	prefix := name + "["
	for key, vals := range values {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		sub := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "]")
		if len(vals) == 1 {
			nested[sub] = vals[0]
		} else {
			nested[sub] = vals
		}
	}

	plain := values[name]
	switch {
	case len(nested) > 0:
		if len(plain) > 0 {
			nested[""] = plain
		}
		return nested, true
	case len(plain) > 1:
		return plain, true
	case len(plain) == 1 && plain[0] != "":
		return plain[0], true
	default:
		return nil, false
	}
}
