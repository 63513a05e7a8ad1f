package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jafari-mohammad-reza/canvacast/pkg"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type HttpServer struct {
	cfg       *pkg.ServerConfig
	verifier  *Verifier
	store     ConsentStore
	publisher *Publisher
}

func NewHttpServer(cfg *pkg.ServerConfig, store ConsentStore) *HttpServer {
	return &HttpServer{
		cfg:       cfg,
		verifier:  NewVerifier(cfg.SecretKey(), cfg.LeniencySeconds),
		store:     store,
		publisher: NewPublisher(cfg.PublicDir, cfg.StrictTypes),
	}
}

func (s *HttpServer) Echo() *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.Logger.SetLevel(log.INFO)
	server.Validator = &CustomValidator{validator: validator.New()}
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.GET("/", s.welcome)
	server.GET("/login", s.login)
	server.GET("/auth", s.auth)
	server.GET("/url", s.lastPublished)
	server.POST("/configuration", s.configuration, s.verifyPost)
	server.POST("/configuration/delete", s.configurationDelete, s.verifyPost)
	server.POST("/publish/resources/find", s.findResources, s.verifyPost)
	server.POST("/publish/resources/get", s.getResource, s.verifyPost)
	server.POST("/publish/resources/upload", s.upload, s.verifyPost)
	server.Static("/", s.cfg.PublicDir)
	return server
}

func InitHttpServer(cfg *pkg.ServerConfig, store ConsentStore) error {
	return NewHttpServer(cfg, store).Echo().Start(fmt.Sprintf(":%d", cfg.HttpPort))
}

// verifyPost authenticates a webhook request before the handler runs. The
// signature covers the exact raw body bytes, so the body is captured here and
// restored for binding. Failures are a bare 401, no detail to probe against.
func (s *HttpServer) verifyPost(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rawBody, err := io.ReadAll(req.Body)
		if err != nil {
			return c.NoContent(http.StatusUnauthorized)
		}
		req.Body = io.NopCloser(bytes.NewReader(rawBody))
		timestamp := req.Header.Get("X-Canva-Timestamp")
		signatures := req.Header.Get("X-Canva-Signatures")
		if !s.verifier.VerifyPost(timestamp, req.URL.Path, rawBody, signatures) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return next(c)
	}
}

func (s *HttpServer) welcome(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to Canvacast Publish Extension App")
}

func (s *HttpServer) login(c echo.Context) error {
	q := GetSignatureQuery{
		Time:       c.QueryParam("time"),
		User:       c.QueryParam("user"),
		Brand:      c.QueryParam("brand"),
		Extensions: c.QueryParam("extensions"),
		State:      c.QueryParam("state"),
		Signatures: c.QueryParam("signatures"),
	}
	if !s.verifier.VerifyGet(q) {
		return c.NoContent(http.StatusUnauthorized)
	}
	stateToken, err := pkg.GenerateStateToken(s.cfg.JwtSecret, pkg.StateClaims{
		User:       q.User,
		Brand:      q.Brand,
		Extensions: q.Extensions,
		State:      q.State,
	})
	if err != nil {
		slog.Error("failed to generate state token", "err", err.Error())
		return c.NoContent(http.StatusInternalServerError)
	}
	authorize, err := url.Parse(s.cfg.AuthorizeUrl)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	query := authorize.Query()
	query.Set("client_id", s.cfg.OauthClientId)
	query.Set("redirect_uri", requestOrigin(c)+"/auth")
	query.Set("response_type", "code")
	query.Set("state", stateToken)
	authorize.RawQuery = query.Encode()
	return c.Redirect(http.StatusFound, authorize.String())
}

func (s *HttpServer) auth(c echo.Context) error {
	claims, err := pkg.DecodeStateToken(s.cfg.JwtSecret, c.QueryParam("state"))
	if err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}
	if err := s.store.Grant(c.Request().Context(), claims.User); err != nil {
		slog.Error("failed to grant consent", "user", claims.User, "err", err.Error())
		return c.NoContent(http.StatusInternalServerError)
	}
	configured, err := url.Parse(s.cfg.ConfiguredUrl)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	query := configured.Query()
	query.Set("success", "true")
	query.Set("state", claims.State)
	configured.RawQuery = query.Encode()
	return c.Redirect(http.StatusFound, configured.String())
}

func (s *HttpServer) configuration(c echo.Context) error {
	var body pkg.ConfigurationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	consented, err := s.store.IsConsented(c.Request().Context(), body.User)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"message": "internal server error",
		})
	}
	if !consented {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"type":      pkg.ResponseError,
			"errorCode": pkg.ErrCodeConfigurationRequired,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":   pkg.ResponseSuccess,
		"labels": []string{"PUBLISH"},
	})
}

func (s *HttpServer) configurationDelete(c echo.Context) error {
	var body pkg.ConfigurationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	if err := s.store.Revoke(c.Request().Context(), body.User); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"message": "internal server error",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": pkg.ResponseSuccess,
	})
}

func (s *HttpServer) findResources(c echo.Context) error {
	dirs, err := pkg.ListDirs(s.cfg.PublicDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"message": "internal server error",
		})
	}
	resources := make([]pkg.Container, 0, len(dirs))
	for _, dir := range dirs {
		resources = append(resources, pkg.Container{
			Type:     "CONTAINER",
			Id:       dir,
			Name:     dir,
			IsOwner:  true,
			ReadOnly: false,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":      pkg.ResponseSuccess,
		"resources": resources,
	})
}

func (s *HttpServer) getResource(c echo.Context) error {
	var body pkg.ResourceBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	target, err := pkg.SafeChild(s.cfg.PublicDir, body.Id)
	if err == nil {
		if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"type": pkg.ResponseSuccess,
				"resource": pkg.Container{
					Type:     "CONTAINER",
					Id:       body.Id,
					Name:     info.Name(),
					IsOwner:  true,
					ReadOnly: false,
				},
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":      pkg.ResponseError,
		"errorCode": pkg.ErrCodeNotFound,
	})
}

func (s *HttpServer) upload(c echo.Context) error {
	var body pkg.UploadBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "invalid request",
		})
	}
	consented, err := s.store.IsConsented(c.Request().Context(), body.User)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"message": "internal server error",
		})
	}
	if !consented {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"type":      pkg.ResponseError,
			"errorCode": pkg.ErrCodeConfigurationRequired,
		})
	}
	// the write must complete even if the platform disconnects mid-download,
	// so the pipeline runs detached from the request's cancellation
	results := s.publisher.Publish(context.WithoutCancel(c.Request().Context()), body.Assets, body.Parent, requestOrigin(c))
	publishedUrl := ""
	failures := 0
	for _, result := range results {
		if result.Type == pkg.ResponseSuccess && publishedUrl == "" {
			publishedUrl = result.Url
		}
		if result.Type == pkg.ResponseError {
			failures++
		}
	}
	if publishedUrl == "" && failures > 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"type":      pkg.ResponseError,
			"errorCode": pkg.ErrCodeFailedToFetch,
			"assets":    results,
		})
	}
	response := map[string]interface{}{
		"type":   pkg.ResponseSuccess,
		"assets": results,
	}
	if publishedUrl != "" {
		response["url"] = publishedUrl
	}
	return c.JSON(http.StatusOK, response)
}

func (s *HttpServer) lastPublished(c echo.Context) error {
	latest := s.publisher.Latest()
	if latest == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{})
	}
	return c.JSON(http.StatusOK, latest)
}

func requestOrigin(c echo.Context) string {
	return fmt.Sprintf("%s://%s", c.Scheme(), c.Request().Host)
}
