package api

import (
	"embed"
	"html/template"

	"pdfquiz/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// SetupRoutes sets up the page and API routes. The session middleware must
// already be installed on router.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, frontendURL string) {
	router.Use(CORSMiddleware(frontendURL))
	router.SetHTMLTemplate(Templates())

	router.GET("/healthz", handler.HandleHealth)

	// --- Page Routes ---
	router.GET("/", handler.HandleIndex)
	router.POST("/generate", handler.HandleGenerate)
	router.POST("/submit", handler.HandleSubmit)

	// --- API Routes ---
	api := router.Group("/api")
	{
		api.POST("/quiz/generate", handler.HandleGenerateQuiz)
		api.GET("/quiz", handler.HandleGetQuiz)
		api.PUT("/quiz/answers/:index", handler.HandleSelectAnswer)
		api.POST("/quiz/submit", handler.HandleSubmitQuiz)
		api.GET("/history", handler.HandleListHistory)
		api.GET("/history/:id", handler.HandleGetHistoryQuiz)
	}
}
