package handler

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authlab/members/internal/api/middleware"
)

// MemberImages are the pictures shown in the members area.
var MemberImages = []string{"/broccoli.jpg", "/carrot.jpg", "/pepper.jpg"}

var pictures = map[int]picture{
	1: {Image: "/broccoli.jpg", Alt: "Broccoli"},
	2: {Image: "/carrot.jpg", Alt: "Carrot"},
}

type picture struct {
	ID    string
	Image string
	Alt   string
}

type homePage struct {
	Authenticated bool
	Name          string
}

type membersPage struct {
	Name  string
	Image string
}

// PagesHandler serves the content pages.
type PagesHandler struct {
	pick func(n int) int
	now  func() time.Time
}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{pick: rand.Intn, now: time.Now}
}

// Home greets an active member by name and offers signup and login to
// everyone else.
func (h *PagesHandler) Home(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	page := homePage{}
	if sess.Active(h.now()) {
		page = homePage{Authenticated: true, Name: sess.Name}
	}
	return c.Render(http.StatusOK, "home.html", page)
}

// Members shows the greeting and a random picture. It sits behind
// middleware.RequireSession.
func (h *PagesHandler) Members(c echo.Context) error {
	return c.Render(http.StatusOK, "members.html", membersPage{
		Name:  middleware.CurrentSession(c).Name,
		Image: MemberImages[h.pick(len(MemberImages))],
	})
}

// About renders the heading in the color from the query string.
func (h *PagesHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about.html", map[string]string{"Color": c.QueryParam("color")})
}

// Contact renders the subscription form, with a notice when the previous
// submission had no email.
func (h *PagesHandler) Contact(c echo.Context) error {
	return c.Render(http.StatusOK, "contact.html", map[string]bool{"Missing": c.QueryParam("missing") != ""})
}

// SubmitEmail acknowledges a subscription. Nothing is stored.
func (h *PagesHandler) SubmitEmail(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if req.Email == "" {
		return c.Redirect(http.StatusFound, "/contact?missing=1")
	}
	return c.Render(http.StatusOK, "subscribed.html", req.Email)
}

// Pics shows the picture with the given id.
func (h *PagesHandler) Pics(c echo.Context) error {
	id := c.Param("id")
	pic := picture{ID: id}
	if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil {
		if known, ok := pictures[n]; ok {
			pic = known
		}
	}
	return c.Render(http.StatusOK, "picture.html", pic)
}
