package main

import (
	"errors"
	"gawlo/src/boot"
	"gawlo/src/db"
	"gawlo/src/lib/mailer"
	"gawlo/src/middlewares"
	"gawlo/src/types"
	"gawlo/src/utils"
	"io"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// gtdate validates that a date form field parses and is after the named
// sibling field.
var gtdate validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := utils.ParseEventDate(value)
	if err != nil {
		return false
	}
	otherValue, ok := fl.Parent().FieldByName(fl.Param()).Interface().(string)
	if !ok {
		return false
	}
	other, err := utils.ParseEventDate(otherValue)
	if err != nil {
		return false
	}
	return !other.After(datetime)
}

// respondError maps the error taxonomy to a response at the request
// boundary. Handlers with operation-specific status codes check the types
// themselves before falling through to this.
func respondError(ctx *gin.Context, err error) {
	var (
		validationErr   *types.ValidationError
		conflictErr     *types.ConflictError
		authErr         *types.AuthError
		notFoundErr     *types.NotFoundError
		capacityErr     *types.CapacityError
		notificationErr *types.NotificationError
	)
	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.As(err, &conflictErr):
		ctx.JSON(http.StatusConflict, gin.H{"message": conflictErr.Message})
	case errors.As(err, &authErr):
		status := http.StatusBadRequest
		if authErr.Reason == types.AuthReasonInsufficientRole {
			status = http.StatusForbidden
		}
		ctx.JSON(status, gin.H{"message": authErr.Message})
	case errors.As(err, &notFoundErr):
		ctx.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Message})
	case errors.As(err, &capacityErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"message": capacityErr.Message})
	case errors.As(err, &notificationErr):
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": notificationErr.Message})
	default:
		log.Printf("internal error: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Erreur du serveur"})
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "L'API fonctionne...")
	})
	router.GET("/health", func(ctx *gin.Context) {
		database := "connected"
		if err := db.Ping(); err != nil {
			database = "disconnected"
		}
		ctx.JSON(http.StatusOK, gin.H{
			"server":   "running",
			"database": database,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(func(ctx *gin.Context) {
		log.Printf("Erreur 404 - Route non trouvée : %s %s\n", ctx.Request.Method, ctx.Request.URL.Path)
		ctx.JSON(http.StatusNotFound, gin.H{"message": "Route non trouvée"})
	})
	return router
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("gtdate", gtdate)
	}
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func uploadsDir() string {
	dir := os.Getenv("UPLOADS_DIR")
	if dir == "" {
		cwd, _ := os.Getwd()
		dir = path.Join(cwd, "uploads")
	}
	return dir
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	sink, err := mailer.NewSMTP()
	if err != nil {
		log.Fatalf("Could not initialize mail sink: %s\n", err.Error())
	}

	router := setupRouter()

	cc := cors.DefaultConfig()
	cc.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	cc.AllowMethods = []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"}
	cc.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"}
	cc.AllowCredentials = true
	router.Use(cors.New(cc))

	router.Use(middlewares.RateLimiter)

	registerValidators()

	if err := os.MkdirAll(uploadsDir(), 0o755); err != nil {
		log.Printf("Could not create uploads directory: %s\n", err.Error())
	}
	router.Static("/uploads", uploadsDir())

	userHandlers(router.Group("/users"), sink)
	eventHandlers(router.Group("/events"), sink)
	refundHandlers(router.Group("/refunds"), sink)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}
	log.Printf("Serveur démarré sur le port %s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server error: %s\n", err.Error())
	}
}
