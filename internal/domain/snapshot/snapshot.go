// Package snapshot exports and restores the whole store as a compressed archive.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"gudang/internal/core/apperror"
	"gudang/internal/core/tx"
	"gudang/internal/domain/inventory"
	"gudang/internal/domain/ledger"
	"gudang/pkg/logger"
)

// ArchiveVersion guards against restoring archives written by an
// incompatible release.
const ArchiveVersion = 1

// Archive is the JSON payload inside the compressed snapshot.
// It carries the full item store and the full movement log, so restoring
// it into an empty store reproduces the exact state at export time.
type Archive struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Items      []inventory.Item  `json:"items"`
	Movements  []ledger.Movement `json:"movements"`
}

// Service exports and restores store snapshots.
type Service struct {
	items     inventory.Repository
	movements ledger.Repository
	txm       tx.ReadOnlyManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	now       func() time.Time
}

// NewService creates a snapshot service.
func NewService(items inventory.Repository, movements ledger.Repository, txm tx.ReadOnlyManager) (*Service, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Service{
		items:     items,
		movements: movements,
		txm:       txm,
		encoder:   encoder,
		decoder:   decoder,
		now:       time.Now,
	}, nil
}

// Export reads the full store inside one read-only transaction and returns
// it as a zstd-compressed JSON archive.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	archive := Archive{
		Version:    ArchiveVersion,
		ExportedAt: s.now().UTC(),
	}

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		items, err := s.items.List(ctx)
		if err != nil {
			return err
		}
		movements, err := s.movements.List(ctx, ledger.Filter{})
		if err != nil {
			return err
		}
		archive.Items = items
		archive.Movements = movements
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(archive)
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}

	logger.Info(ctx, "snapshot exported",
		"items", len(archive.Items),
		"movements", len(archive.Movements),
		"raw_bytes", len(payload))

	return s.encoder.EncodeAll(payload, nil), nil
}

// Restore decodes an archive and writes it into an empty store.
// The emptiness check and all inserts run inside one transaction, so a
// failed restore leaves nothing behind.
func (s *Service) Restore(ctx context.Context, data []byte) error {
	payload, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return apperror.NewValidation("archive is not a valid snapshot").WithCause(err)
	}

	var archive Archive
	if err := json.Unmarshal(payload, &archive); err != nil {
		return apperror.NewValidation("archive payload is malformed").WithCause(err)
	}
	if archive.Version != ArchiveVersion {
		return apperror.NewValidation("unsupported archive version").
			WithDetail("version", archive.Version).
			WithDetail("supported", ArchiveVersion)
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		itemCount, err := s.items.Count(ctx)
		if err != nil {
			return err
		}
		movementCount, err := s.movements.Count(ctx)
		if err != nil {
			return err
		}
		if itemCount > 0 || movementCount > 0 {
			return apperror.NewStoreNotEmpty(itemCount, movementCount)
		}

		for i := range archive.Items {
			if err := s.items.Insert(ctx, &archive.Items[i]); err != nil {
				return fmt.Errorf("restore item %q: %w", archive.Items[i].Name, err)
			}
		}
		for i := range archive.Movements {
			if err := s.movements.Append(ctx, &archive.Movements[i]); err != nil {
				return fmt.Errorf("restore movement %s: %w", archive.Movements[i].TrxCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "snapshot restored",
		"items", len(archive.Items),
		"movements", len(archive.Movements),
		"exported_at", archive.ExportedAt)

	return nil
}
