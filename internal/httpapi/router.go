// Package httpapi assembles the Q&A service components into one gin engine.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/config"
	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/bans"
	"github.com/aura-webinar/qna/internal/chat"
	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/questions"
	"github.com/aura-webinar/qna/internal/ratelimit"
	"github.com/aura-webinar/qna/internal/realtime"
	"github.com/aura-webinar/qna/internal/roles"
	"github.com/aura-webinar/qna/internal/synthesis"
	"github.com/aura-webinar/qna/pkg/response"
)

// Options are the collaborators the router is built from.
type Options struct {
	JWT       *auth.JWTService
	Questions questions.Store
	// Generator is the text-generation backend; nil runs synthesis in fallback mode.
	Generator         synthesis.TextGenerator
	Synthesis         config.SynthesisConfig
	GenerationTimeout time.Duration
	// Limiter guards POST /questions; nil disables limiting.
	Limiter ratelimit.Limiter
	Hub     *realtime.Hub
	Logger  *zap.Logger
}

// App is the wired service. The stores are exposed for seeding and tests.
type App struct {
	Router    *gin.Engine
	Roles     *roles.Store
	Bans      *bans.Registry
	Abuse     *chat.Abuse
	Chat      *chat.Handler
	Synthesis *synthesis.Service
	Hub       *realtime.Hub
}

// New builds every component and registers the routes.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Questions
	if store == nil {
		store = questions.NewMemoryStore()
	}
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(logger, nil, nil)
	}
	threshold := opts.Synthesis.ClusterThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = synthesis.DefaultClusterThreshold
	}

	roleStore := roles.NewStore()
	gate := roles.NewGate(roleStore)
	banRegistry := bans.NewRegistry()
	abuse := chat.NewAbuse()

	generator := synthesis.NewGenerator(opts.Generator, synthesis.GeneratorOptions{
		MinQuestions: opts.Synthesis.MinQuestions,
		MaxQuestions: opts.Synthesis.MaxQuestions,
		Timeout:      opts.GenerationTimeout,
	}, logger)
	synthesisSvc := synthesis.NewService(store, synthesis.NewClusterer(nil, threshold), generator, logger)
	synthesisSvc.SetNotifier(hub)

	triage := questions.NewService(store, logger)
	triage.SetNotifier(hub)
	questionHandler := questions.NewHandler(store, triage, banRegistry, gate, logger)
	questionHandler.SetNotifier(hub)

	chatHandler := chat.NewHandler(chat.NewStore(), abuse, banRegistry, logger)
	chatHandler.SetNotifier(hub)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, response.Body{Success: false, Error: "method not allowed"})
	})

	h := handlers{
		questions: questionHandler,
		synthesis: synthesis.NewHandler(synthesisSvc, logger),
		chat:      chatHandler,
		bans:      bans.NewHandler(banRegistry, gate, logger),
		roles:     roles.NewHandler(roleStore, logger),
	}
	register(r, h, opts.JWT, gate, opts.Limiter, hub, logger)

	return &App{
		Router:    r,
		Roles:     roleStore,
		Bans:      banRegistry,
		Abuse:     abuse,
		Chat:      chatHandler,
		Synthesis: synthesisSvc,
		Hub:       hub,
	}
}

type handlers struct {
	questions *questions.Handler
	synthesis *synthesis.Handler
	chat      *chat.Handler
	bans      *bans.Handler
	roles     *roles.Handler
}

func register(r *gin.Engine, h handlers, jwtService *auth.JWTService, gate *roles.Gate, limiter ratelimit.Limiter, hub *realtime.Hub, logger *zap.Logger) {
	r.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public, identity optional
	public := r.Group("")
	public.Use(middleware.OptionalJWT(jwtService))
	{
		public.POST("/questions", ratelimit.Middleware(limiter, logger), h.questions.Submit)
		public.GET("/synthesized_questions", h.synthesis.List)
		public.GET("/trigger_summarization", h.synthesis.TriggerSummarization)
		public.GET("/api/speaker/questions/:event_id", h.questions.ListForSpeaker)
		public.GET("/api/audience/questions/synthesized/:session_id", h.synthesis.Audience)
		public.GET("/api/chat/:event_id", h.chat.List)
	}

	api := r.Group("")
	api.Use(middleware.JWT(jwtService))
	api.POST("/api/chat/:event_id", h.chat.Post)

	modEvent := middleware.RequireEventModerator(gate, "event_id")
	modSession := middleware.RequireEventModerator(gate, "session_id")
	mod := api.Group("/api/mod")
	{
		mod.GET("/questions/:event_id", modEvent, h.questions.ListForModerator)
		// The event is known only after the question is loaded, so the handler checks the gate.
		mod.POST("/question/:question_id/:action", h.questions.Action)
		mod.GET("/questions/clusters/:event_id", modEvent, h.synthesis.Clusters)

		mod.GET("/questions/synthesized/:session_id", modSession, h.synthesis.ModeratorList)
		mod.POST("/questions/synthesize/:session_id", modSession, h.synthesis.Regenerate)
		mod.POST("/questions/synthesized/:session_id/approve/:question_id", modSession, h.synthesis.Approve)
		mod.POST("/questions/synthesized/:session_id/reject/:question_id", modSession, h.synthesis.Reject)
		mod.POST("/questions/synthesized/:session_id/edit/:question_id", modSession, h.synthesis.Edit)

		mod.DELETE("/chat/:event_id/messages/:message_id", modEvent, h.chat.DeleteMessage)
		mod.GET("/chat/user/:event_id/:user_id", modEvent, h.chat.Status)
		mod.POST("/chat/user/:event_id/:user_id/mute", modEvent, h.chat.Mute)
		mod.DELETE("/chat/user/:event_id/:user_id/mute", modEvent, h.chat.Unmute)
		mod.POST("/chat/user/:event_id/:user_id/expel", modEvent, h.chat.Expel)
		mod.DELETE("/chat/user/:event_id/:user_id/expel", modEvent, h.chat.ClearExpulsion)

		mod.POST("/users/:event_id/:user_id/ban", modEvent, h.bans.Ban)
		mod.POST("/users/:event_id/:user_id/unban", modEvent, h.bans.Unban)
	}

	admin := api.Group("/api/admin")
	admin.Use(middleware.RequireAdmin(gate))
	{
		admin.POST("/users/:user_id/ban", h.bans.Ban)
		admin.POST("/users/:user_id/unban", h.bans.Unban)
		admin.POST("/users/:user_id/role", h.roles.SetGlobal)
	}

	organizer := api.Group("/api/organizer/event/:event_id")
	organizer.Use(middleware.RequireRoleManager(gate, "event_id"))
	{
		organizer.GET("/roles", h.roles.List)
		organizer.POST("/add_role", h.roles.Add)
		organizer.POST("/remove_role", h.roles.Remove)
	}

	identify := func(token string) (auth.Identity, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return auth.Identity{}, err
		}
		return claims.Identity(), nil
	}
	r.GET("/ws", realtime.ServeWs(hub, logger, identify, gate.CanModerate))
	r.GET("/api/events/:event_id/audience_count", realtime.AudienceCount(hub))
}
