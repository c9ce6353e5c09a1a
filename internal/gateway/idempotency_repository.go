package gateway

import (
	"context"
	"strings"
	"time"
)

// IdempotencyKey identifica uma requisição repetível. A mesma Idempotency-Key vinda de
// outro usuário ou em outra rota é outra operação.
type IdempotencyKey struct {
	UserID string
	Method string
	Path   string
	Key    string
}

// String é a chave física no store: user:method:path:key.
func (k IdempotencyKey) String() string {
	user := k.UserID
	if user == "" {
		user = "anonymous"
	}
	return strings.Join([]string{user, k.Method, k.Path, k.Key}, ":")
}

// CachedResponse é a resposta da primeira execução, devolvida nas repetições.
type CachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Cacheable: 5xx (inclui 503 de armazenamento) nunca é gravado, o cliente precisa poder repetir.
func (c CachedResponse) Cacheable() bool {
	return c.StatusCode < 500
}

type IdempotencyRepository interface {
	// Get retorna a resposta cacheada ou nil quando a chave não existe.
	Get(ctx context.Context, key IdempotencyKey) (*CachedResponse, error)

	Save(ctx context.Context, key IdempotencyKey, response CachedResponse, ttl time.Duration) error
}
