package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// BasicAuth guards admin endpoints with the merchant API key pair: the
// public key is the username, the private key the password.
func BasicAuth(publicKey, privateKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				writeAuthError(w, "missing credentials", "auth_required")
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(publicKey)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(privateKey)) == 1
			if !userOK || !passOK {
				writeAuthError(w, "invalid credentials", "auth_invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg, code string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="gateway admin"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
		"code":  code,
	})
}
