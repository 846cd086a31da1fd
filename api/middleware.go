package api

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/d1vyadharsh1n1/MetroX/api/response"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
)

// instrumentedResponseWriter captures the status code. Hijack is forwarded
// so websocket upgrades keep working.
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *instrumentedResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *instrumentedResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrument wraps h with a span and a request metric labelled by route.
func instrument(route string, h http.Handler, rec coremetrics.HTTPRequestRecorder, lg logger.Logger) http.Handler {
	tracer := otel.Tracer("metrox/api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := tracer.Start(r.Context(), "HTTP "+r.Method+" "+route, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		))
		defer span.End()

		iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		h.ServeHTTP(iw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", iw.statusCode))
		if iw.statusCode >= 500 {
			span.SetStatus(codes.Error, "Server Error")
		}
		if rec == nil {
			return
		}
		if err := rec.RecordHTTPRequest(coremetrics.HTTPRequest{
			Method:   r.Method,
			Path:     route,
			Code:     iw.statusCode,
			Duration: time.Since(start),
		}); err != nil {
			lg.Warnf("record request %s: %v", route, err)
		}
	})
}

// cors answers preflight requests and sets the allow headers.
func cors(origins []string, h http.Handler) http.Handler {
	allowAll := false
	allowed := map[string]bool{}
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// bearerAuth guards h with a static token and/or an HS256 JWT. With
// neither configured the handler is returned unchanged.
func bearerAuth(token, secret string, h http.Handler) http.Handler {
	if token == "" && secret == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			response.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if token != "" && raw == token {
			h.ServeHTTP(w, r)
			return
		}
		if secret != "" {
			if err := verifyJWT(raw, secret); err == nil {
				h.ServeHTTP(w, r)
				return
			}
		}
		response.Error(w, http.StatusUnauthorized, "unauthorized")
	})
}

func verifyJWT(raw, secret string) error {
	tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !tok.Valid {
		return errors.New("invalid token")
	}
	return nil
}
