package jsonfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/errors"
	"slot_booking_bot/pkg/logger"
)

// write сохраняет документ целиком через writeAtomic
func (s *Store) write(doc *models.Document) error {
	err := writeAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	})
	if err != nil {
		return errors.ErrStorageWrite.WithError(err).WithContext(map[string]interface{}{
			"path": s.path,
		})
	}

	s.logger.Debug("Store document written",
		logger.String("path", s.path),
		logger.Int("users", len(doc.Users)),
		logger.Int("bookings", len(doc.Bookings)),
	)
	return nil
}

// writeAtomic пишет во временный файл в каталоге цели, сбрасывает его на
// диск и переименовывает поверх цели. Только rename меняет то, что видят
// читатели. Временный файл удаляется на любом пути выхода кроме успешного.
func writeAtomic(path string, encode func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Очистка best-effort: ее ошибки не должны заслонять исходную
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := encode(tmp); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	committed = true
	return nil
}
