package offline

import (
	"context"
	"net/http"
	"time"
)

// Entry is a stored response.
type Entry struct {
	URL      string      `json:"url"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// ResponseStore returns entities.ErrNotFound on a miss.
type ResponseStore interface {
	GetResponse(ctx context.Context, key string) (*Entry, error)
	PutResponse(ctx context.Context, key string, e *Entry) error
}
