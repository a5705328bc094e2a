package main

import "net/http"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":      "available",
		"environment": app.config.Environment,
		"version":     app.config.Version,
	}

	app.writeResponse(w, r, http.StatusOK, data, "service is healthy")
}
