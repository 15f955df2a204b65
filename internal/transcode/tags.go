package transcode

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gcottom/mp3meta"
	"go.uber.org/zap"
)

// TagAudio writes title and artist ID3 tags into the mp3 at path.
// The file is rewritten through a temporary file in the same directory.
func (s *Service) TagAudio(path, title, artist string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read mp3: %w", err)
	}

	tag, err := mp3meta.ParseMP3(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse mp3: %w", err)
	}
	if title != "" {
		tag.SetTitle(title)
	}
	if artist != "" {
		tag.SetArtist(artist)
	}

	output := new(bytes.Buffer)
	if err := tag.Save(output); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tag-*.mp3")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(output.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	s.logger.Debug("tagged audio", zap.String("path", path), zap.String("title", title))
	return nil
}
