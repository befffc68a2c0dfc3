package handlers

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{
		Status:      "Server is running",
		Timestamp:   a.now().UTC(),
		Environment: a.AppEnv,
	})
}
