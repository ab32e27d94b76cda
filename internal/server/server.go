package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"binsight/internal/domain"
	"binsight/internal/engine"
	"binsight/internal/repo"
)

// maxImageBytes caps the station photo upload.
const maxImageBytes = 10 << 20

// ImageClassifier is the vision backend used by the classify endpoint.
type ImageClassifier interface {
	Classify(ctx context.Context, jpeg []byte) (domain.AnalyzedCategory, error)
}

// Config for the HTTP API handler.
type Config struct {
	Engine     engine.Engine
	Classifier ImageClassifier
	BasePath   string
	Auth       AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"waste item not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Binsight API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestKey{}, r)))
				return
			}
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Binsight API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuth(group, cfg.Engine, cfg.Auth)
	registerAdmins(group, cfg.Engine)
	registerImages(group, cfg.Classifier)
	registerDisposals(group, cfg.Engine)
	registerStatistics(group, cfg.Engine)
	registerNotifications(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrBadCredentials) {
		return newAPIError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	if errors.Is(err, repo.ErrAlreadyExists) {
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") || strings.Contains(lowered, "must be"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func bodyBytes(ctx context.Context) []byte {
	if buf, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return buf
	}
	req, ok := ctx.Value(requestKey{}).(*http.Request)
	if !ok || req == nil {
		return nil
	}
	data, _ := io.ReadAll(req.Body)
	return data
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	openPaths := map[string]bool{
		path.Join(basePath, "health"):          true,
		path.Join(basePath, "auth/login"):      true,
		path.Join(basePath, "disposals"):       true,
		path.Join(basePath, "images/classify"): true,
	}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if openPaths[route] {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Binsight API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuth(api huma.API, e engine.Engine, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Admin login",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if input.Body.Username == "" || input.Body.Password == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "username and password are required", nil)
		}
		admin, err := e.Authenticate(ctx, input.Body.Username, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := signToken(authCfg.JWTSecret, admin.ID, admin.Username, e.Now(), authCfg.tokenTTL())
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Token: token}}, nil
	})
}

func registerAdmins(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-admin",
		Method:        http.MethodPost,
		Path:          "/admins",
		Summary:       "Create admin account",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateAdminRequest `json:"body"`
	}) (*struct {
		Body AdminResponse `json:"body"`
	}, error) {
		if _, authErr := adminIDFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		a, err := e.CreateAdmin(ctx, input.Body.Username, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body AdminResponse `json:"body"`
		}{Body: adminResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-admins",
		Method:      http.MethodGet,
		Path:        "/admins",
		Summary:     "List admin accounts",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []AdminResponse `json:"body"`
	}, error) {
		if _, authErr := adminIDFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		admins, err := e.ListAdmins(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := make([]AdminResponse, 0, len(admins))
		for _, a := range admins {
			resp = append(resp, adminResponse(a))
		}
		return &struct {
			Body []AdminResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerImages(api huma.API, classifier ImageClassifier) {
	huma.Register(api, huma.Operation{
		OperationID:  "classify-image",
		Method:       http.MethodPost,
		Path:         "/images/classify",
		Summary:      "Classify a waste item photo",
		MaxBodyBytes: maxImageBytes,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusServiceUnavailable,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		RawBody huma.MultipartFormFiles[struct {
			Image huma.FormFile `form:"image" contentType:"image/jpeg" required:"true"`
		}]
	}) (*struct {
		Body ClassifyResponse `json:"body"`
	}, error) {
		if classifier == nil {
			return nil, newAPIError(http.StatusServiceUnavailable, "classifier_unavailable", "image classifier not configured", nil)
		}
		form := input.RawBody.Data()
		if !form.Image.IsSet {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "image file is required", nil)
		}
		if !strings.HasPrefix(form.Image.ContentType, "image/jpeg") {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "only jpeg images are accepted", map[string]any{"content_type": form.Image.ContentType})
		}
		jpeg, err := io.ReadAll(form.Image)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "reading image", map[string]any{"error": err.Error()})
		}
		category, err := classifier.Classify(ctx, jpeg)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ClassifyResponse `json:"body"`
		}{Body: ClassifyResponse{Category: string(category)}}, nil
	})
}

func registerDisposals(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-disposal",
		Method:        http.MethodPost,
		Path:          "/disposals",
		Summary:       "Record one disposal reported by the station",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body RecordDisposalRequest `json:"body"`
	}) (*struct {
		Body DisposalResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		analyzed, err := domain.ParseAnalyzedCategory(input.Body.AnalyzedCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		bin, err := domain.ParseBinCategory(input.Body.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		view, err := e.RecordDisposal(ctx, analyzed, bin)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DisposalResponse `json:"body"`
		}{Body: disposalResponse(view)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-disposals",
		Method:      http.MethodGet,
		Path:        "/disposals",
		Summary:     "List all disposals, newest first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []*DisposalResponse `json:"body"`
	}, error) {
		views, err := e.ListDisposals(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []*DisposalResponse `json:"body"`
		}{Body: disposalResponses(views)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-disposal",
		Method:      http.MethodGet,
		Path:        "/disposals/{waste_item_id}",
		Summary:     "Get one disposal",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		WasteItemID string `path:"waste_item_id"`
	}) (*struct {
		Body DisposalResponse `json:"body"`
	}, error) {
		view, err := e.GetView(ctx, input.WasteItemID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DisposalResponse `json:"body"`
		}{Body: disposalResponse(view)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-disposal-views",
		Method:      http.MethodPost,
		Path:        "/disposals/views",
		Summary:     "Get disposals for a list of waste item ids",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, input *struct {
		Body DisposalViewsRequest `json:"body"`
	}) (*struct {
		Body []*DisposalResponse `json:"body"`
	}, error) {
		views, err := e.GetViews(ctx, input.Body.IDs)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []*DisposalResponse `json:"body"`
		}{Body: disposalResponses(views)}, nil
	})
}

func disposalResponses(views []*domain.DisposalView) []*DisposalResponse {
	if views == nil {
		return []*DisposalResponse{}
	}
	resp := make([]*DisposalResponse, len(views))
	for i, v := range views {
		if v == nil {
			continue
		}
		r := disposalResponse(*v)
		resp[i] = &r
	}
	return resp
}

func registerStatistics(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-statistics",
		Method:      http.MethodGet,
		Path:        "/statistics",
		Summary:     "List per-bin statistics",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []StatisticResponse `json:"body"`
	}, error) {
		stats, err := e.ListStatistics(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := make([]StatisticResponse, 0, len(stats))
		for _, s := range stats {
			resp = append(resp, statisticResponse(s))
		}
		return &struct {
			Body []StatisticResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-statistic",
		Method:      http.MethodGet,
		Path:        "/statistics/{bin_category}",
		Summary:     "Get one bin's statistic",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		BinCategory string `path:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	}) (*struct {
		Body StatisticResponse `json:"body"`
	}, error) {
		bin, err := domain.ParseBinCategory(input.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		s, err := e.GetStatistic(ctx, bin)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StatisticResponse `json:"body"`
		}{Body: statisticResponse(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "recount-statistic",
		Method:      http.MethodPost,
		Path:        "/statistics/{bin_category}/recount",
		Summary:     "Recount one bin and refresh every ratio",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, input *struct {
		BinCategory string `path:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	}) (*struct {
		Body StatisticResponse `json:"body"`
	}, error) {
		bin, err := domain.ParseBinCategory(input.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		s, err := e.BumpCategoryCount(ctx, bin)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StatisticResponse `json:"body"`
		}{Body: statisticResponse(s)}, nil
	})
}

func registerNotifications(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-notification",
		Method:        http.MethodPost,
		Path:          "/notifications",
		Summary:       "Track fill alerts for a bin",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateNotificationRequest `json:"body"`
	}) (*struct {
		Body NotificationResponse `json:"body"`
	}, error) {
		bin, err := domain.ParseBinCategory(input.Body.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		if input.Body.AdminID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "admin_id is required", nil)
		}
		n, err := e.CreateNotification(ctx, bin, input.Body.AdminID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body NotificationResponse `json:"body"`
		}{Body: notificationResponse(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "List bin fill trackers",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []NotificationResponse `json:"body"`
	}, error) {
		notifs, err := e.ListNotifications(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := make([]NotificationResponse, 0, len(notifs))
		for _, n := range notifs {
			resp = append(resp, notificationResponse(n))
		}
		return &struct {
			Body []NotificationResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-notification",
		Method:      http.MethodGet,
		Path:        "/notifications/{bin_category}",
		Summary:     "Get one bin's fill tracker",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		BinCategory string `path:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	}) (*struct {
		Body NotificationResponse `json:"body"`
	}, error) {
		bin, err := domain.ParseBinCategory(input.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		n, err := e.GetNotification(ctx, bin)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body NotificationResponse `json:"body"`
		}{Body: notificationResponse(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-bin-full",
		Method:      http.MethodPut,
		Path:        "/notifications/{bin_category}/fill",
		Summary:     "Report a bin's fill state",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		BinCategory string            `path:"bin_category" enum:"compost,recyclage,poubelle,autre"`
		Body        SetBinFullRequest `json:"body"`
	}) (*struct {
		Body NotificationResponse `json:"body"`
	}, error) {
		bin, err := domain.ParseBinCategory(input.BinCategory)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		n, err := e.SetBinFull(ctx, bin, input.Body.IsFull)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body NotificationResponse `json:"body"`
		}{Body: notificationResponse(n)}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent events",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind" enum:"waste_item,notification,admin"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
	}) (*struct {
		Body []EventResponse `json:"body"`
	}, error) {
		events, err := e.Repo.LatestEvents(ctx, input.Limit, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		resp := make([]EventResponse, 0, len(events))
		for _, evt := range events {
			resp = append(resp, eventResponse(evt))
		}
		return &struct {
			Body []EventResponse `json:"body"`
		}{Body: resp}, nil
	})
}
