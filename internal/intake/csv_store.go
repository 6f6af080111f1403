package intake

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/system/constants"
)

// csvStore implements IntakeStore over a single delimited file. The table is
// held in memory and rewritten in full after every mutation. The highest id
// ever issued is kept in a sidecar file so deleted ids are never reissued.
type csvStore struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	seqPath string
	records []model.IntakeRequest
	lastID  int64
}

// NewCSVStore loads (or creates) the table at path on fs.
func NewCSVStore(fs afero.Fs, path string) (IntakeStore, error) {
	s := &csvStore{
		fs:      fs,
		path:    path,
		seqPath: path + ".seq",
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *csvStore) load() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) > 0 {
		records, err := readRecords(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", s.path, err)
		}
		s.records = records
	}

	if seq, err := afero.ReadFile(s.fs, s.seqPath); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(string(seq)), 10, 64); err == nil {
			s.lastID = n
		}
	}
	for i := range s.records {
		if n, err := strconv.ParseInt(s.records[i].ID, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}

	backfilled := false
	for i := range s.records {
		if s.records[i].ID == "" {
			s.lastID++
			s.records[i].ID = strconv.FormatInt(s.lastID, 10)
			backfilled = true
		}
	}
	if backfilled {
		if err := s.writeSeq(s.lastID); err != nil {
			return err
		}
		return s.writeTable(s.records)
	}
	return nil
}

func (s *csvStore) Insert(_ context.Context, rec *model.IntakeRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.lastID + 1
	if err := s.writeSeq(next); err != nil {
		return "", err
	}
	s.lastID = next
	rec.ID = strconv.FormatInt(next, 10)

	records := append(s.snapshot(), *rec)
	if err := s.writeTable(records); err != nil {
		return "", err
	}
	s.records = records
	return rec.ID, nil
}

func (s *csvStore) List(_ context.Context, filter model.ListFilter) ([]model.IntakeRequest, error) {
	s.mu.Lock()
	records := s.snapshot()
	s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := make([]model.IntakeRequest, 0, len(records))
	for _, rec := range records {
		if filter.Team != "" && rec.RequestorTeam != filter.Team {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.RequestTitle), search) &&
			!strings.Contains(strings.ToLower(rec.RequestorName), search) {
			continue
		}
		matched = append(matched, rec)
	}

	sortByPriority(matched)
	if len(matched) > constants.MaxListSize {
		matched = matched[:constants.MaxListSize]
	}
	return matched, nil
}

func (s *csvStore) GetByID(_ context.Context, id string) (*model.IntakeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		rec := s.records[i]
		return &rec, nil
	}
	return nil, nil
}

func (s *csvStore) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) (bool, error) {
	return s.mutate(id, func(rec *model.IntakeRequest) {
		rec.Status = status
		rec.UpdatedAt = &updatedAt
	})
}

func (s *csvStore) SetJiraKey(_ context.Context, id, key string) error {
	found, err := s.mutate(id, func(rec *model.IntakeRequest) {
		rec.JiraKey = &key
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("intake request %s not found", id)
	}
	return nil
}

func (s *csvStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	records := s.snapshot()
	records = append(records[:i], records[i+1:]...)
	if err := s.writeTable(records); err != nil {
		return err
	}
	s.records = records
	return nil
}

func (s *csvStore) ExportAll(_ context.Context) ([]model.IntakeRequest, error) {
	s.mu.Lock()
	records := s.snapshot()
	s.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *csvStore) HealthCheck(_ context.Context) error {
	if _, err := s.fs.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

func (s *csvStore) mutate(id string, apply func(rec *model.IntakeRequest)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	records := s.snapshot()
	apply(&records[i])
	if err := s.writeTable(records); err != nil {
		return false, err
	}
	s.records = records
	return true, nil
}

func (s *csvStore) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *csvStore) snapshot() []model.IntakeRequest {
	return append([]model.IntakeRequest(nil), s.records...)
}

func (s *csvStore) writeTable(records []model.IntakeRequest) error {
	var buf bytes.Buffer
	if err := writeRecords(&buf, records); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return s.replace(s.path, buf.Bytes())
}

func (s *csvStore) writeSeq(n int64) error {
	return s.replace(s.seqPath, []byte(strconv.FormatInt(n, 10)+"\n"))
}

// replace writes data to a temporary sibling and renames it over path.
func (s *csvStore) replace(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// sortByPriority orders by score descending, newest first among equal scores.
func sortByPriority(records []model.IntakeRequest) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PriorityScore != records[j].PriorityScore {
			return records[i].PriorityScore > records[j].PriorityScore
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
