package main

import (
	"context"
	"log"

	api "classnest-backend/cmd/api"
	"classnest-backend/internal/call"
	identitydomain "classnest-backend/internal/identity/domain"
	"classnest-backend/internal/inbound"
	"classnest-backend/internal/notification"
	notifdomain "classnest-backend/internal/notification/domain"
	notifrepo "classnest-backend/internal/notification/repository"
	tokendomain "classnest-backend/internal/token/domain"
	tokenrepo "classnest-backend/internal/token/repository"
	tokenusecase "classnest-backend/internal/token/usecase"
	"classnest-backend/pkg/config"
	"classnest-backend/pkg/database"
	"classnest-backend/pkg/platform"
	"classnest-backend/pkg/push"
	"classnest-backend/pkg/sse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&identitydomain.User{}, &tokendomain.DeviceToken{}, &notifdomain.Record{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	tokenRepository := tokenrepo.NewTokenRepository(db)
	recordRepository := notifrepo.NewRecordRepository(db)

	tokenStore := tokenusecase.NewStore(tokenRepository)
	recorder := notification.NewRecorder(recordRepository)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize push client (optional, everything degrades without it)
	var pushClient *push.Client
	if cfg.FirebaseCredentials != "" {
		pushClient, err = push.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize push client (push notifications disabled): %v", err)
			pushClient = nil
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, push disabled")
	}

	var sender notification.Sender
	if pushClient != nil {
		sender = pushClient
	}
	notifService := notification.NewService(recorder, tokenRepository, sender, sseManager)

	// Reminder scheduler delivers scheduled records when due
	scheduler := notification.NewReminderScheduler(recordRepository, notifService, cfg.ReminderInterval)
	scheduler.Start()
	defer scheduler.Stop()

	// Call presentation: native call UI behind the regional policy gate,
	// plain actionable notification as fallback
	plat := platform.Parse(cfg.Platform)
	var native call.NativeCallUI
	var notifier call.Notifier
	if pushClient != nil {
		native = call.NewVoIPReporter(pushClient, tokenStore, "ClassNest")
		notifier = call.NewPushNotifier(pushClient, tokenStore)
	}
	presenter := call.NewPresenter(plat, cfg.RegionAllowsNativeCallUI, native, notifier)

	// Inbound event router: pub/sub events fan out to in-app channels and
	// the call presenter
	router := inbound.NewRouter(notifService)
	router.SubscribeNavigation(func(route string, params map[string]string) {
		log.Printf("[Main] Deep link dispatched: %s", route)
	})
	router.SubscribeMessages(func(ev inbound.Event) {
		if userID := ev.RecipientID(); userID != "" {
			sseManager.SendToUser(userID, "inbound", ev)
		}
		if ev.Type == "call" {
			presenter.ShowIncomingCall(context.Background(), call.Session{
				ID:             ev.Data["callId"],
				CalleeID:       ev.RecipientID(),
				CallerID:       ev.Data["callerId"],
				CallerName:     ev.Data["callerName"],
				CallerPhotoURL: ev.Data["callerPhotoUrl"],
				IsVideo:        ev.Data["isVideo"] == "true",
			})
		}
	})
	defer router.Close()

	if cfg.GoogleProjectID != "" {
		source, err := inbound.NewPubSubSource(cfg.GoogleProjectID, cfg.PubSubTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize pub/sub event source: %v", err)
		} else {
			router.Run(context.Background(), source)
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, inbound event source disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(tokenStore, recordRepository, notifService, presenter, sseManager, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
