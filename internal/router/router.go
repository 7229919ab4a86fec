package router

import (
	"github.com/EmilianoRojas/brigade-awards/internal/handlers"
	"github.com/EmilianoRojas/brigade-awards/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	awardHandler := handlers.NewAwardHandler()
	nominationHandler := handlers.NewNominationHandler()
	voteHandler := handlers.NewVoteHandler()
	adminHandler := handlers.NewAdminHandler()

	api := r.Group("/api")

	// Public routes
	api.POST("/login", authHandler.Login)

	// Authenticated routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/get-awards", awardHandler.GetAwards)
		authorized.GET("/get-award-candidates", awardHandler.GetCandidates)
		authorized.GET("/get-award-results", voteHandler.GetResults)
		authorized.GET("/get-user-nominations", nominationHandler.GetUserNominations)
		authorized.GET("/get-user-final-votes", voteHandler.GetUserFinalVotes)
		authorized.POST("/submit-nominations", nominationHandler.SubmitNominations)
		authorized.POST("/submit-final-vote", voteHandler.SubmitFinalVote)
		authorized.POST("/change-password", authHandler.ChangePassword)
	}

	// Admin routes
	admin := api.Group("/")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/get-all-awards", awardHandler.GetAllAwards)
		admin.GET("/get-award-nominations", nominationHandler.GetAwardNominations)
		admin.POST("/toggle-award-active", adminHandler.ToggleAwardActive)
		admin.POST("/update-award-phase", adminHandler.UpdateAwardPhase)
		admin.POST("/end-nomination-phase", adminHandler.EndNominationPhase)
		admin.POST("/end-voting-phase", adminHandler.EndVotingPhase)
		admin.POST("/close-award", adminHandler.CloseAward)
		admin.POST("/bulk-activate-awards", adminHandler.BulkActivateAwards)
		admin.POST("/bulk-deactivate-awards", adminHandler.BulkDeactivateAwards)
		admin.POST("/reset-awards", adminHandler.ResetAwards)
	}
}
