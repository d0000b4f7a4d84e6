package report

import (
	"context"
	"fmt"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/pkg/utils/crypto"
)

const encryptedSuffix = ".enc"

// encryptingPublisher seals reports with AES-GCM before handing them on.
// The stored object name is bound to the ciphertext as associated data.
type encryptingPublisher struct {
	next ports.ReportPublisher
	key  string
}

func NewEncryptingPublisher(next ports.ReportPublisher, key string) ports.ReportPublisher {
	return &encryptingPublisher{next: next, key: key}
}

func (e *encryptingPublisher) Sink() string { return e.next.Sink() }

func (e *encryptingPublisher) Publish(ctx context.Context, name string, payload []byte) (string, error) {
	sealedName := name + encryptedSuffix
	sealed, err := crypto.Seal(payload, e.key, []byte(sealedName))
	if err != nil {
		return "", fmt.Errorf("encrypt report: %w", err)
	}
	return e.next.Publish(ctx, sealedName, []byte(sealed))
}
