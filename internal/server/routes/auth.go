package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"

	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/observability"
)

const (
	authSessionName      = "lacquer-auth"
	authSessionUserIDKey = "userID"
	authUserIDKey        = "authUserID"
	githubProvider       = "github"
	gothSessionName      = "_gothic_session"
)

// AuthConfig configures session and GitHub OAuth authentication.
type AuthConfig struct {
	SessionKey         string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	SecureCookies      bool
}

// ConfigureAuth initializes session store and GitHub OAuth provider.
func ConfigureAuth(config AuthConfig) {
	store := sessions.NewCookieStore([]byte(config.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	if strings.TrimSpace(config.GitHubClientID) == "" {
		return
	}
	goth.UseProviders(
		github.New(
			config.GitHubClientID,
			config.GitHubClientSecret,
			config.GitHubCallbackURL,
			"read:user",
			"user:email",
		),
	)
}

// AuthRoutes registers authentication endpoints.
type AuthRoutes struct {
	users          ports.UserStore
	enableDevLogin bool
}

// NewAuthRoutes constructs auth routes. enableDevLogin exposes
// /auth/dev/login and must only be set in local environments.
func NewAuthRoutes(users ports.UserStore, enableDevLogin bool) *AuthRoutes {
	return &AuthRoutes{users: users, enableDevLogin: enableDevLogin}
}

// RegisterRoutes registers authentication routes on the server.
func (a *AuthRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/logout", a.handleLogout)
	s.GET("/auth/:provider", a.handleAuthBegin)
	s.GET("/auth/:provider/callback", a.handleAuthCallback)
	s.GET("/me", a.handleMe, RequireAuth(0))
	if a.enableDevLogin {
		s.POST("/auth/dev/login", a.handleDevLogin)
	}
}

// RequireAuth resolves the caller from the session cookie. When no session
// exists and bypassUserID is positive, the request runs as that user;
// otherwise it is rejected with 401.
func RequireAuth(bypassUserID int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := sessionUserID(c)
			if !ok && bypassUserID > 0 {
				userID, ok = bypassUserID, true
			}
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			ctx := observability.WithRequestIdentity(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(authUserIDKey, userID)
			return next(c)
		}
	}
}

// RequireAdmin rejects authenticated callers that isAdmin refuses. It must
// run after RequireAuth.
func RequireAdmin(isAdmin func(userID int64) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := GetAuthUserID(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if isAdmin == nil || !isAdmin(userID) {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

func (a *AuthRoutes) handleLogout(c echo.Context) error {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	delete(session.Values, authSessionUserIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *AuthRoutes) handleAuthBegin(c echo.Context) error {
	provider := c.Param("provider")
	if provider != githubProvider {
		return c.NoContent(http.StatusNotFound)
	}
	request := addProviderParam(c.Request(), provider)
	gothic.BeginAuthHandler(c.Response(), request)
	return nil
}

func (a *AuthRoutes) handleAuthCallback(c echo.Context) error {
	provider := c.Param("provider")
	if provider != githubProvider {
		return c.NoContent(http.StatusNotFound)
	}
	request := addProviderParam(c.Request(), provider)
	user, err := gothic.CompleteUserAuth(c.Response(), request)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired, sign in again")
		}
		return err
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		nick := strings.TrimSpace(user.NickName)
		if nick == "" {
			nick = "user"
		}
		email = nick + "@local.invalid"
	}
	nickname := strings.TrimSpace(user.NickName)
	if nickname == "" {
		nickname = strings.Split(email, "@")[0]
	}

	localUser, err := a.users.UpsertUser(request.Context(), ports.User{
		GitHubID:  user.UserID,
		Email:     email,
		Nickname:  nickname,
		Name:      firstNonEmpty(user.Name, nickname),
		AvatarURL: user.AvatarURL,
	})
	if err != nil {
		return err
	}
	if err := saveSessionUser(c, localUser.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse(localUser))
}

func (a *AuthRoutes) handleDevLogin(c echo.Context) error {
	if !a.enableDevLogin {
		return c.NoContent(http.StatusNotFound)
	}

	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		email = "dev-user@example.local"
	}
	nickname := strings.TrimSpace(c.FormValue("nickname"))
	if nickname == "" {
		nickname = strings.Split(email, "@")[0]
	}
	githubID := strings.TrimSpace(c.FormValue("github_id"))
	if githubID == "" {
		githubID = "dev:" + nickname
	}

	localUser, err := a.users.UpsertUser(c.Request().Context(), ports.User{
		GitHubID: githubID,
		Email:    email,
		Nickname: nickname,
		Name:     firstNonEmpty(c.FormValue("name"), nickname),
	})
	if err != nil {
		return err
	}
	if err := saveSessionUser(c, localUser.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse(localUser))
}

func (a *AuthRoutes) handleMe(c echo.Context) error {
	userID, _ := GetAuthUserID(c)
	user, err := a.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, userResponse(user))
}

// GetAuthUserID returns the authenticated local user id.
func GetAuthUserID(c echo.Context) (int64, bool) {
	if userID, ok := c.Get(authUserIDKey).(int64); ok && userID > 0 {
		return userID, true
	}
	return sessionUserID(c)
}

func sessionUserID(c echo.Context) (int64, bool) {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
		}
		return 0, false
	}
	value, ok := session.Values[authSessionUserIDKey]
	if !ok || value == nil {
		return 0, false
	}
	var id int64
	switch v := value.(type) {
	case int64:
		id = v
	case int:
		id = int64(v)
	case int32:
		id = int64(v)
	case float64:
		id = int64(v)
	default:
		return 0, false
	}
	return id, id > 0
}

func saveSessionUser(c echo.Context, userID int64) error {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil && !isInvalidSecureCookieError(err) {
		return err
	}
	session.Values[authSessionUserIDKey] = userID
	return session.Save(c.Request(), c.Response())
}

type authUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func userResponse(user ports.User) authUserResponse {
	return authUserResponse{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Nickname:  user.Nickname,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

func addProviderParam(request *http.Request, provider string) *http.Request {
	query := request.URL.Query()
	query.Set("provider", provider)
	request.URL.RawQuery = query.Encode()
	return request
}

func isInvalidSecureCookieError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "securecookie") && strings.Contains(msg, "not valid")
}

func clearSessionCookie(c echo.Context, name string) {
	http.SetCookie(c.Response(), &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
