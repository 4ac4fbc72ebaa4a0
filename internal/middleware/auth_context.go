package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"petlink/internal/ports/auth"
)

// Headers aceptados solo en modo dev (sin verifier).
const (
	HeaderDebugUserID = "X-Debug-User-ID"
	HeaderDebugEmail  = "X-Debug-User-Email"
	HeaderDebugStaff  = "X-Debug-Staff"
)

type claimsCtxKey struct{}

// AuthContext resuelve las claims del request y las deja en el contexto.
// Con verifier se usa el Bearer token; sin verifier, los headers X-Debug-*.
// Un request sin claims válidas sigue igual: cada handler decide si exige auth.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	resolve := devClaims
	if verifier != nil {
		resolve = func(r *http.Request) (auth.Claims, bool) {
			return tokenClaims(r, verifier)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolve(r); ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims devuelve un contexto hijo con las claims dadas.
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(auth.Claims)
	return c, ok
}

func devClaims(r *http.Request) (auth.Claims, bool) {
	uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID))
	if uid == "" {
		return auth.Claims{}, false
	}
	// Valor de staff no parseable = no staff.
	staff, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(HeaderDebugStaff)))
	return auth.Claims{
		UserID:  uid,
		Email:   strings.TrimSpace(r.Header.Get(HeaderDebugEmail)),
		IsStaff: staff,
	}, true
}

func tokenClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil || strings.TrimSpace(claims.UserID) == "" {
		return auth.Claims{}, false
	}
	return claims, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
