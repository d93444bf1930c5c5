package toml

import (
	"context"
	"sync"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
	"github.com/spf13/viper"
)

const (
	historyPathKey  = "history.path"
	historyFileName = "selection_history.toml"
)

type SelectionHistoryRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.SelectionHistoryRepository = (*SelectionHistoryRepository)(nil)

func NewSelectionHistoryRepository(cfg *viper.Viper) (*SelectionHistoryRepository, error) {
	path, err := resolvePath(cfg, historyPathKey, historyFileName)
	if err != nil {
		return nil, err
	}

	return &SelectionHistoryRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *SelectionHistoryRepository) Load(ctx context.Context) (domain.SelectionHistory, error) {
	if err := ctx.Err(); err != nil {
		return domain.SelectionHistory{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file historyFileSchema
	if err := readTOMLFile(r.path, "selection history", &file); err != nil {
		return domain.SelectionHistory{}, err
	}
	if err := file.validateVersion(); err != nil {
		return domain.SelectionHistory{}, err
	}
	file.applyDefaults()

	history := domain.SelectionHistory{Users: make(map[string]domain.SelectionRecord, len(file.Users))}
	for username, entry := range file.Users {
		history.Users[username] = domain.SelectionRecord{
			FirstSelected: parseTime(entry.FirstSelected),
			LastSelected:  parseTime(entry.LastSelected),
			TimesSelected: entry.TimesSelected,
		}
	}
	for _, entry := range file.Log {
		history.Log = append(history.Log, domain.SelectionLogEntry{
			Timestamp: parseTime(entry.Timestamp),
			Count:     entry.Count,
			Usernames: entry.Usernames,
			Dataset:   entry.Dataset,
		})
	}

	return history, nil
}

func (r *SelectionHistoryRepository) Save(ctx context.Context, history domain.SelectionHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := historyFileSchema{Users: make(map[string]selectionSchema, len(history.Users))}
	file.applyDefaults()
	for username, record := range history.Users {
		file.Users[username] = selectionSchema{
			FirstSelected: formatTime(record.FirstSelected),
			LastSelected:  formatTime(record.LastSelected),
			TimesSelected: record.TimesSelected,
		}
	}
	for _, entry := range history.Log {
		file.Log = append(file.Log, selectionLogSchema{
			Timestamp: formatTime(entry.Timestamp),
			Count:     entry.Count,
			Usernames: entry.Usernames,
			Dataset:   entry.Dataset,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeTOMLFile(r.path, file)
}
