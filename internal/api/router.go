// internal/api/router.go
package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Corphon/MagicStudio/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// RouterOptions tunes SetupRouter
type RouterOptions struct {
	DebugMode bool
	// CreateLimit caps creation attempts per client IP per minute; zero disables it
	CreateLimit int
	// UnlockLimit caps parental password tries per client IP per minute; zero disables it
	UnlockLimit int
}

const (
	msgTooManyDrawings = "Too many drawings at once! Take a little break."
	msgTooManyUnlocks  = "Too many password attempts. Try again in a minute."
)

// throttle returns the per-IP limiter chain, empty when limit is zero
func throttle(limit int, message string) []gin.HandlerFunc {
	if limit <= 0 {
		return nil
	}
	return []gin.HandlerFunc{ThrottleByIP(uint(limit), time.Minute, message)}
}

func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}

// SetupRouter wires every route of the studio
func SetupRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	if !opts.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(utils.GetLogger(), utils.GetAPIMetrics()))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Rate-Limit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.SetHTMLTemplate(tmpl)

	create := throttle(opts.CreateLimit, msgTooManyDrawings)
	unlock := throttle(opts.UnlockLimit, msgTooManyUnlocks)

	// views
	r.GET("/", h.CreationPage)
	r.POST("/create", chain(create, h.CreateSubmit)...)
	r.GET("/parents", h.ParentsPage)
	r.POST("/parents", chain(unlock, h.ParentsSubmit)...)

	// progress stream for the loading indicator
	r.GET("/ws/attempts", h.Hub.ServeWS)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(utils.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.POST("/create", chain(create, h.CreateAPI)...)

		parents := api.Group("/parents")
		{
			parents.POST("/session", chain(unlock, h.ParentSession)...)
			parents.GET("/history", ParentSessionMiddleware(h.Tokens), h.ParentHistory)
		}
	}

	return r, nil
}
