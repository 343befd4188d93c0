package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// RequireSecret admits only requests presenting secret, either as the
// "secret" query parameter or as "Authorization: Bearer <secret>". Both
// sides are hashed to fixed-length digests before a constant-time compare,
// so timing reveals neither the length nor a shared prefix. An empty secret
// rejects every request.
func RequireSecret(secret string) func(http.Handler) http.Handler {
	enabled := secret != ""
	want := blake2b.Sum256([]byte(secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := blake2b.Sum256([]byte(presentedSecret(r)))
			if !enabled || subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedSecret(r *http.Request) string {
	if s := r.URL.Query().Get("secret"); s != "" {
		return s
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
