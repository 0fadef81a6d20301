package main

import (
	"github.com/gin-gonic/gin"
	"astraldraw.backend/internal/interfaces/http/handlers"
	"astraldraw.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	walletHandler     *handlers.WalletHandler
	drawHandler       *handlers.DrawHandler
	ventureHandler    *handlers.VentureHandler
	governanceHandler *handlers.GovernanceHandler
	alertHandler      *handlers.AlertHandler
	statsHandler      *handlers.StatsHandler
	authMiddleware    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.GET("/me", d.walletHandler.GetWallet)
			wallets.GET("/me/balance", d.walletHandler.GetBalance)
			wallets.POST("/me/buy-astra", middleware.IdempotencyMiddleware(), d.walletHandler.BuyAstra)
		}

		// Draw routes (public read)
		draws := v1.Group("/draws")
		{
			draws.GET("", d.drawHandler.ListDraws)
			draws.GET("/active", d.drawHandler.GetActiveDraw)
			draws.GET("/winners", d.drawHandler.GetRecentWinners)
			draws.GET("/:id", d.drawHandler.GetDraw)
		}

		// Draw routes (protected)
		drawsAuth := v1.Group("/draws")
		drawsAuth.Use(d.authMiddleware)
		{
			drawsAuth.GET("/keys/mine", d.drawHandler.GetMyKeys)
			drawsAuth.POST("/:id/keys", middleware.IdempotencyMiddleware(), d.drawHandler.ForgeKeys)
		}

		// Venture routes (public read)
		ventures := v1.Group("/ventures")
		{
			ventures.GET("", d.ventureHandler.ListVentures)
			ventures.GET("/:id", d.ventureHandler.GetVenture)
			ventures.GET("/:id/cap-table", d.ventureHandler.GetCapTable)
		}

		// Venture routes (protected)
		venturesAuth := v1.Group("/ventures")
		venturesAuth.Use(d.authMiddleware)
		{
			venturesAuth.POST("", d.ventureHandler.CreateVenture)
			venturesAuth.GET("/tickets/mine", d.ventureHandler.GetMyTickets)
			venturesAuth.GET("/holdings/mine", d.ventureHandler.GetMyHoldings)
			venturesAuth.GET("/:id/can-buy", d.ventureHandler.CanBuy)
			venturesAuth.POST("/:id/tickets", middleware.IdempotencyMiddleware(), d.ventureHandler.PurchaseTicket)
		}

		// Governance routes (public read)
		governance := v1.Group("/governance")
		{
			governance.GET("/tiers", d.governanceHandler.TierAvailability)
			governance.GET("/topics", d.governanceHandler.ListTopics)
			governance.GET("/proposals", d.governanceHandler.ListProposals)
			governance.GET("/proposals/:id", d.governanceHandler.GetProposal)
			governance.GET("/proposals/:id/results", d.governanceHandler.GetResults)
			governance.GET("/marketplace", d.governanceHandler.ListOpenListings)
		}

		// Governance routes (protected)
		governanceAuth := v1.Group("/governance")
		governanceAuth.Use(d.authMiddleware)
		{
			governanceAuth.POST("/nfts", middleware.IdempotencyMiddleware(), d.governanceHandler.PurchaseNFT)
			governanceAuth.GET("/nfts/mine", d.governanceHandler.MyNFTs)
			governanceAuth.POST("/nfts/:id/list", d.governanceHandler.ListNFT)
			governanceAuth.GET("/voting-power", d.governanceHandler.MyVotingPower)
			governanceAuth.POST("/proposals", d.governanceHandler.CreateProposal)
			governanceAuth.POST("/proposals/:id/votes", d.governanceHandler.CastVote)
			governanceAuth.POST("/marketplace/:id/buy", middleware.IdempotencyMiddleware(), d.governanceHandler.BuyListing)
		}

		// Alert routes (protected)
		alerts := v1.Group("/alerts")
		alerts.Use(d.authMiddleware)
		{
			alerts.GET("", d.alertHandler.List)
			alerts.POST("/read-all", d.alertHandler.MarkAllRead)
			alerts.POST("/:id/read", d.alertHandler.MarkRead)
		}

		// Platform stats (public)
		v1.GET("/stats", d.statsHandler.GetPlatformStats)

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/draws", d.drawHandler.CreateDraw)
			admin.POST("/draws/:id/process", d.drawHandler.ProcessDraw)
		}
	}
}
