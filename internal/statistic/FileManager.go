package statistic

import (
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"spc/internal/models"
	"spc/internal/providers"
	"spc/internal/services"
	"spc/internal/statistic/interfaces"
	"time"
)

// FileManager persists the validation statistics snapshot as zstd-compressed
// JSON.
type FileManager struct {
	service    services.ValidationServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.ValidationServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
		metrics:    metrics,
	}
}

// SaveToFile writes the snapshot to a temp file and renames it over fileName,
// so a crash never leaves a truncated snapshot behind.
func (f *FileManager) SaveToFile(fileName string) error {
	start := time.Now()
	defer func() { f.metrics.ObservePersistenceDuration(time.Since(start)) }()

	jsonData, err := json.Marshal(f.service.GetSnapshot())
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores a snapshot written by SaveToFile. A missing file is
// a fresh start, not an error.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap models.StatsSnapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return fmt.Errorf("decode statistics snapshot: %w", err)
	}
	if snap.Version != models.StatsSnapshotVersion {
		return fmt.Errorf("unsupported statistics snapshot version %d", snap.Version)
	}

	f.service.PutSnapshot(&snap)
	accepted, rejected := f.service.Totals()
	f.logger.Infof(providers.TypeApp, "Restored statistics taken at %s: %d accepted, %d rejected", snap.TakenAt.Format(time.RFC3339), accepted, rejected)
	return nil
}
