package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"placehub/internal/app/places"
	"placehub/internal/app/users"
	"placehub/internal/auth"
	"placehub/internal/blobstore"
	"placehub/internal/geocode"
	"placehub/internal/httpapi"
	"placehub/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, logger zerolog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	geocoder := geocode.NewGoogleClient(cfg.GeocoderAPIKey)
	blobs := blobstore.NewHTTPStore(cfg.BlobstoreURL, cfg.BlobstoreToken)

	userSvc := users.New(dataStore, tokens)
	placeSvc := places.New(dataStore, dataStore, geocoder, blobs, logger)

	handler := httpapi.New(userSvc, placeSvc, tokens).Routes()
	handler = httpapi.Recovery(handler)
	handler = httpapi.RequestLogging(handler)
	return withCORS(cfg.AllowedOrigins, handler)
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
