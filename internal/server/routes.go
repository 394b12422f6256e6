package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/server/api"
	"github.com/looplj/crmhub/internal/server/biz"
	"github.com/looplj/crmhub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	System     *api.SystemHandlers
	Auth       *api.AuthHandlers
	Users      *api.UserHandlers
	Teams      *api.TeamHandlers
	Leads      *api.LeadHandlers
	Contacts   *api.ContactHandlers
	Deals      *api.DealHandlers
	Tasks      *api.TaskHandlers
	Activities *api.ActivityHandlers
	Provenance *api.ProvenanceHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	// Setup CORS middleware at server level if enabled
	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	publicGroup := server.Group("", middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Health check endpoint - no authentication required
		publicGroup.GET("/health", handlers.System.Health)
		// User Login - DO NOT AUTH
		publicGroup.POST("/api/auth/signin", handlers.Auth.SignIn)
	}

	apiGroup := server.Group("/api",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithJWTAuth(services.AuthService),
	)

	{
		userGroup := apiGroup.Group("/users")
		userGroup.POST("", handlers.Users.CreateUser)
		userGroup.GET("", handlers.Users.ListUsers)
		userGroup.GET("/:id", handlers.Users.GetUser)
		userGroup.PUT("/:id", handlers.Users.UpdateUser)
		userGroup.DELETE("/:id", handlers.Users.DeleteUser)
		userGroup.GET("/:id/roles", handlers.Users.ListRoles)
		userGroup.POST("/:id/roles", handlers.Users.AssignRole)
	}

	// Role assignments are revoked by assignment id, not by user id.
	apiGroup.DELETE("/roles/:id", handlers.Users.RevokeRole)

	{
		teamGroup := apiGroup.Group("/teams")
		teamGroup.POST("", handlers.Teams.CreateTeam)
		teamGroup.GET("", handlers.Teams.ListTeams)
		teamGroup.GET("/:id", handlers.Teams.GetTeam)
		teamGroup.PUT("/:id", handlers.Teams.UpdateTeam)
		teamGroup.DELETE("/:id", handlers.Teams.DeleteTeam)
		teamGroup.GET("/:id/members", handlers.Teams.ListMembers)
		teamGroup.POST("/:id/members", handlers.Teams.AddMember)
		teamGroup.PUT("/:id/members/:memberID", handlers.Teams.UpdateMember)
		teamGroup.DELETE("/:id/members/:memberID", handlers.Teams.RemoveMember)
	}

	{
		leadGroup := apiGroup.Group("/leads")
		leadGroup.POST("", handlers.Leads.CreateLead)
		leadGroup.GET("", handlers.Leads.ListLeads)
		leadGroup.GET("/:id", handlers.Leads.GetLead)
		leadGroup.PUT("/:id", handlers.Leads.UpdateLead)
		leadGroup.DELETE("/:id", handlers.Leads.DeleteLead)
		leadGroup.POST("/:id/convert", handlers.Leads.ConvertLead)
		leadGroup.GET("/:id/status-history", handlers.Leads.ListStatusHistory)
	}

	{
		contactGroup := apiGroup.Group("/contacts")
		contactGroup.POST("", handlers.Contacts.CreateContact)
		contactGroup.GET("", handlers.Contacts.ListContacts)
		contactGroup.GET("/:id", handlers.Contacts.GetContact)
		contactGroup.PUT("/:id", handlers.Contacts.UpdateContact)
		contactGroup.DELETE("/:id", handlers.Contacts.DeleteContact)
	}

	{
		dealGroup := apiGroup.Group("/deals")
		dealGroup.POST("", handlers.Deals.CreateDeal)
		dealGroup.GET("", handlers.Deals.ListDeals)
		dealGroup.GET("/:id", handlers.Deals.GetDeal)
		dealGroup.PUT("/:id", handlers.Deals.UpdateDeal)
		dealGroup.DELETE("/:id", handlers.Deals.DeleteDeal)
		dealGroup.POST("/:id/move-stage", handlers.Deals.MoveStage)
		dealGroup.GET("/:id/stage-history", handlers.Deals.ListStageHistory)
	}

	{
		taskGroup := apiGroup.Group("/tasks")
		taskGroup.POST("", handlers.Tasks.CreateTask)
		taskGroup.GET("", handlers.Tasks.ListTasks)
		taskGroup.GET("/:id", handlers.Tasks.GetTask)
		taskGroup.PUT("/:id", handlers.Tasks.UpdateTask)
		taskGroup.DELETE("/:id", handlers.Tasks.DeleteTask)
		taskGroup.POST("/:id/complete", handlers.Tasks.CompleteTask)
	}

	{
		noteGroup := apiGroup.Group("/notes")
		noteGroup.POST("", handlers.Activities.CreateNote)
		noteGroup.GET("", handlers.Activities.ListNotes)
		noteGroup.GET("/:id", handlers.Activities.GetNote)
		noteGroup.PUT("/:id", handlers.Activities.UpdateNote)
		noteGroup.DELETE("/:id", handlers.Activities.DeleteNote)
	}

	{
		docGroup := apiGroup.Group("/documents")
		docGroup.POST("", handlers.Activities.CreateDocument)
		docGroup.GET("", handlers.Activities.ListDocuments)
		docGroup.GET("/:id", handlers.Activities.GetDocument)
		docGroup.DELETE("/:id", handlers.Activities.DeleteDocument)
	}

	{
		commGroup := apiGroup.Group("/communications")
		commGroup.POST("", handlers.Activities.CreateCommunication)
		commGroup.GET("", handlers.Activities.ListCommunications)
		commGroup.GET("/:id", handlers.Activities.GetCommunication)
		commGroup.DELETE("/:id", handlers.Activities.DeleteCommunication)
	}

	{
		logGroup := apiGroup.Group("/logs")
		logGroup.GET("/audit", handlers.Provenance.ListAuditLogs)
		logGroup.GET("/automation", handlers.Provenance.ListAutomationLogs)
	}
}
