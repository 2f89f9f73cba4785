package ports

import (
	"context"
	"io"
)

// ProofStorage stores uploaded proof-of-payment files and returns the opaque
// reference saved on the reservation.
type ProofStorage interface {
	Save(ctx context.Context, originalName, contentType string, body io.Reader) (string, error)
}
