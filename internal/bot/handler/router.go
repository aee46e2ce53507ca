package handler

import "net/http"

// NewRouter собирает маршруты API-сервера бота.
func NewRouter(messages *MessageHandler, settings *SettingsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/messages", messages.HandleMessageEvent)

	mux.HandleFunc("GET /v1/users/{id}/config", settings.GetUserConfig)
	mux.HandleFunc("PUT /v1/users/{id}/config", settings.UpdateUserConfig)

	mux.HandleFunc("GET /v1/servers/{id}/config", settings.GetServerConfig)
	mux.HandleFunc("PUT /v1/servers/{id}/config", settings.UpdateServerConfig)

	return mux
}
