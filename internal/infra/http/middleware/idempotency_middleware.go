package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/rs/zerolog/log"
)

const IdempotencyTTL = 24 * time.Hour

// responseRecorder é um "espião" que grava o que o handler escreve
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)                  // Grava no nosso buffer
	return r.ResponseWriter.Write(b) // Manda pro cliente
}

// Idempotency reaproveita a resposta de um POST repetido com o mesmo Idempotency-Key.
// A chave é isolada por usuário e por rota.
func Idempotency(store gateway.IdempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" || store == nil {
				// Se não tem chave, segue
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scoped := gateway.IdempotencyKey{Method: r.Method, Path: r.URL.Path, Key: key}
			if s, ok := session.FromContext(ctx); ok {
				scoped.UserID = s.UserID
			}

			// Verificar no Redis
			cached, err := store.Get(ctx, scoped)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao buscar chave de idempotência")
				// Em caso de erro no Redis, deixamos passar para não travar a API (Fail Open)
				next.ServeHTTP(w, r)
				return
			}

			// Cache Hit: Retornar o que já tínhamos gravado
			if cached != nil {
				log.Info().Str("key", scoped.String()).Msg("Idempotency cache hit")
				contentType := cached.ContentType
				if contentType == "" {
					contentType = "application/json"
				}
				w.Header().Set("Content-Type", contentType)
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(cached.StatusCode)
				if _, err := w.Write(cached.Body); err != nil {
					log.Error().Err(err).Msg("Falha ao escrever resposta cacheada")
				}
				return
			}

			// Cache Miss: Processar a requisição e gravar a resposta
			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // Default
				body:           &bytes.Buffer{},
			}

			next.ServeHTTP(recorder, r)

			// Salvar no Redis (2xx e 4xx). 5xx fica de fora para permitir retry.
			response := gateway.CachedResponse{
				StatusCode:  recorder.statusCode,
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        recorder.body.Bytes(),
			}
			if response.Cacheable() {
				if err := store.Save(ctx, scoped, response, IdempotencyTTL); err != nil {
					log.Error().Err(err).Msg("Falha ao salvar chave de idempotência")
				}
			}
		})
	}
}
