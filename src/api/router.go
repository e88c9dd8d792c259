package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/handlers"
	"adflow-server/src/hubspot"
	"adflow-server/src/metaads"
	"adflow-server/src/middleware"
)

func NewRouter(pool *pgxpool.Pool, metaClient *metaads.Client, hubspotClient *hubspot.Client) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))
		r.Get("/meta/webhook", handlers.MetaWebhook(pool))
		r.Post("/meta/webhook", handlers.MetaWebhook(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user/{user_id}", handlers.GetUser(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Integrations
			r.Post("/meta/connect", handlers.ConnectMetaAccount(pool))
			r.Post("/meta/campaigns/sync", handlers.SyncMetaCampaigns(pool, metaClient))
			r.Post("/hubspot/connect", handlers.ConnectHubSpot(pool, hubspotClient))
			r.Post("/hubspot/deals/sync", handlers.SyncHubSpotDeals(pool, hubspotClient))
			r.Post("/hubspot/contacts/sync", handlers.SyncHubSpotContacts(pool, hubspotClient))

			// Campaigns
			r.Get("/campaigns", handlers.GetCampaigns(pool))
			r.Get("/campaigns/{campaign_id}", handlers.GetCampaignByID(pool))
			r.Put("/campaigns/{campaign_id}/status", handlers.UpdateCampaignStatus(pool))
			r.Delete("/campaigns/{campaign_id}", handlers.DeleteCampaign(pool))
			r.Get("/campaigns/{campaign_id}/analytics", handlers.GetCampaignAnalytics(pool))

			// Deals
			r.Post("/deals", handlers.CreateDeal(pool))
			r.Get("/deals", handlers.GetDeals(pool))
			r.Get("/deals/{deal_id}", handlers.GetDealByID(pool))
			r.Put("/deals/{deal_id}", handlers.UpdateDeal(pool))
			r.Delete("/deals/{deal_id}", handlers.DeleteDeal(pool))

			// Contacts
			r.Get("/contacts", handlers.GetContacts(pool))
			r.Post("/contacts", handlers.CreateContact(pool))
			r.Delete("/contacts/{contact_id}", handlers.DeleteContact(pool))

			// Automations
			r.Post("/automations/rules", handlers.CreateAutomationRule(pool))
			r.Get("/automations/rules", handlers.GetAllAutomationRules(pool))
			r.Get("/automations/rules/{rule_id}", handlers.GetAutomationRuleByID(pool))
			r.Put("/automations/rules/{rule_id}", handlers.UpdateAutomationRule(pool))
			r.Delete("/automations/rules/{rule_id}", handlers.DeleteAutomationRule(pool))
			r.Post("/automations/execute", handlers.ExecuteAutomations(pool, metaClient))
			r.Get("/automations/logs", handlers.GetAutomationLogs(pool))

			// Notifications
			r.Get("/notifications", handlers.GetNotifications(pool))
			r.Post("/notifications/{notification_id}/read", handlers.MarkNotificationRead(pool))

			// Dashboard
			r.Get("/dashboard/summary", handlers.GetDashboardSummary(pool))
		})

		// Super Admin Routes
		r.With(middleware.JWTAuthMiddleware, middleware.SuperAdminMiddleware).Group(func(r chi.Router) {
			r.Get("/admin/users", handlers.GetAllUsers(pool))
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache(pool))
		})
	})

	return r
}
