package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/leavehub/leavehub-backend-go/internal/config"
	appHTTP "github.com/leavehub/leavehub-backend-go/internal/handler/http"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/clock"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/cron"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/email"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/jwt"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/oauth"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/token"
	"github.com/leavehub/leavehub-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/leavehub/leavehub-backend-go/internal/service/auth"
	serviceInvitation "github.com/leavehub/leavehub-backend-go/internal/service/invitation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	organizationRepo := postgresql.NewOrganizationRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	membershipRepo := postgresql.NewMembershipRepository(db)
	invitationRepo := postgresql.NewInvitationRepository(db)
	jwtRepo := postgresql.NewJWTRepository(db)
	txRunner := postgresql.NewTxRunner(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	authService := serviceAuth.NewAuthService(txRunner, userRepo, jwtService, jwtRepo, googleService)
	invitationService := serviceInvitation.NewInvitationService(
		txRunner,
		invitationRepo,
		organizationRepo,
		teamRepo,
		membershipRepo,
		token.NewGenerator(),
		clock.System(),
		emailService,
		cfg.Invitation,
	)

	scheduler := cron.NewScheduler()
	cron.NewInvitationJobs(invitationService).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(jwtService, authService, googleService, cfg.App.FrontendURL)
	invitationHandler := appHTTP.NewInvitationHandler(invitationService)

	router := appHTTP.NewRouter(jwtService, authHandler, invitationHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
