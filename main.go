package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TechSupportz/tasky-server/handlers"
	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/middleware"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/repositories"
	"github.com/TechSupportz/tasky-server/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedUsers mirrors the client's mock directory.
func seedUsers() []models.User {
	return []models.User{
		{ID: 1, Username: "alice", Type: models.UserPro},
		{ID: 2, Username: "bob", Type: models.UserPro},
		{ID: 3, Username: "charlie", Type: models.UserFree},
		{ID: 4, Username: "dana", Type: models.UserProPlus},
	}
}

func buildStores() (services.CategoryStore, services.TaskStore, func()) {
	backend := envOr("STORE_BACKEND", "memory")

	switch backend {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mongoURI := envOr("MONGO_URI", "mongodb://localhost:27017")
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
		}
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

		db := client.Database(envOr("MONGO_DB_NAME", "tasky_db"))
		categories := services.NewMongoCategoryService(db.Collection("categories"), db.Collection("counters"))
		tasks := services.NewMongoTaskService(db.Collection("tasks"), db.Collection("counters"))
		cleanup := func() { client.Disconnect(context.Background()) }
		return categories, tasks, cleanup

	case "sqlite":
		path := envOr("SQLITE_PATH", "tasky.db")
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Failed to open sqlite database %s: %v", path, err)
		}
		if err := db.AutoMigrate(&models.Category{}, &models.Member{}, &models.Task{}, &models.SubTask{}); err != nil {
			logging.Logger.Fatalf("Event ID: DB_MIGRATE_FAILED, Description: Failed to migrate sqlite schema: %v", err)
		}
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Using sqlite database at %s.", path)
		return services.NewGormCategoryService(db), services.NewGormTaskService(db), func() {}

	default:
		logging.Logger.Info("Event ID: STORE_MEMORY, Description: Using in-memory stores.")
		return services.NewCategoryService(), services.NewTaskService(), func() {}
	}
}

func buildDirectory() services.UserDirectory {
	if baseURL := os.Getenv("USERS_SERVICE_URL"); baseURL != "" {
		breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "UsersServiceCB",
			MaxRequests: 1,
			Timeout:     2 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
		})
		httpClient := &http.Client{Timeout: 5 * time.Second}
		logging.Logger.Infof("Event ID: DIRECTORY_REMOTE, Description: Using remote user directory at %s.", baseURL)
		return services.NewRemoteUserDirectory(baseURL, httpClient, breaker)
	}
	return services.NewUserService(seedUsers(), 1)
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting tasky-server...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_SKIPPED, Description: No .env file loaded: %v", err)
	}

	categories, tasks, cleanup := buildStores()
	defer cleanup()

	users := buildDirectory()

	var history *repositories.NotificationRepo
	if cassHost := os.Getenv("CASS_DB"); cassHost != "" {
		repo, err := repositories.NewNotificationRepo(cassHost)
		if err != nil {
			logging.Logger.Fatalf("Event ID: CASSANDRA_CONNECTION_FAILED, Description: Failed to connect to Cassandra at %s: %v", cassHost, err)
		}
		defer repo.CloseSession()
		history = repo
	}

	reminder := services.NewReminderService(tasks, services.LogNotificationSink{})
	if err := reminder.Start(envOr("REMINDER_CRON", "@hourly")); err != nil {
		logging.Logger.Fatalf("Event ID: REMINDER_SCHEDULE_FAILED, Description: %v", err)
	}
	defer reminder.Stop()

	categoryHandler := handlers.NewCategoryHandler(categories, tasks, users)
	taskHandler := handlers.NewTaskHandler(tasks, categories)
	userHandler := handlers.NewUserHandler(users)
	pageHandler := handlers.NewPageHandler(categories, tasks, users, history)

	r := mux.NewRouter()
	r.HandleFunc("/api/login", userHandler.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/users", userHandler.GetAllUsers).Methods("GET")

	api.HandleFunc("/categories", categoryHandler.CreateCategory).Methods("POST")
	api.HandleFunc("/categories", categoryHandler.ListCategories).Methods("GET")
	api.HandleFunc("/categories/{id}", categoryHandler.GetCategoryByID).Methods("GET")
	api.HandleFunc("/categories/{id}", categoryHandler.UpdateCategory).Methods("PUT")
	api.HandleFunc("/categories/{id}", categoryHandler.DeleteCategory).Methods("DELETE")
	api.HandleFunc("/categories/{id}/members", categoryHandler.GetCategoryMembers).Methods("GET")
	api.HandleFunc("/categories/{id}/members", categoryHandler.AddMemberToCategory).Methods("POST")
	api.HandleFunc("/categories/{id}/members/{memberId}", categoryHandler.RemoveMemberFromCategory).Methods("DELETE")
	api.HandleFunc("/categories/{id}/tasks", categoryHandler.GetTasksForCategory).Methods("GET")

	api.HandleFunc("/tasks/create", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{taskID}/subtasks", taskHandler.AddSubTask).Methods("POST")

	api.HandleFunc("/pages/group-category/{id}/open", pageHandler.Open).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/settings/open", pageHandler.OpenSettings).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/members/open", pageHandler.OpenAddMember).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/tasks/open", pageHandler.OpenAddTask).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/edit", pageHandler.EditCategory).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/members", pageHandler.AddMember).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/members/{memberId}", pageHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/pages/group-category/{id}/delete", pageHandler.DeleteCategory).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}/tasks", pageHandler.AddTask).Methods("POST")
	api.HandleFunc("/pages/group-category/{id}", pageHandler.Close).Methods("DELETE")

	if history != nil {
		notificationHandler := handlers.NewNotificationHandler(history)
		api.HandleFunc("/notifications/{username}", notificationHandler.GetNotificationsByUsername).Methods("GET")
		api.HandleFunc("/notifications/{username}/{id}/read", notificationHandler.MarkAsRead).Methods("POST")
	}

	corsRouter := middleware.EnableCORS(r)

	port := envOr("PORT", "8080")
	logging.Logger.Infof("Event ID: SERVER_LISTENING, Description: tasky-server running on http://localhost:%s", port)
	if err := http.ListenAndServe(":"+port, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FAILED, Description: Server stopped: %v", err)
	}
}
