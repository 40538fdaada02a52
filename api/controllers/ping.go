package controllers

import (
	"net/http"

	"github.com/DevStdio379/settisfy-web/api/middleware"
	"github.com/DevStdio379/settisfy-web/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, callerPayload(r, "private"))
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, callerPayload(r, "admin"))
	}
}

func callerPayload(r *http.Request, scope string) map[string]string {
	payload := map[string]string{"scope": scope, "status": "ok"}
	if account := middleware.AccountIDFromContext(r.Context()); account != "" {
		payload["account_id"] = account
	}
	if role := middleware.RoleFromContext(r.Context()); role != "" {
		payload["role"] = role
	}
	return payload
}
