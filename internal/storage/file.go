package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
)

// FileStore stores the pool snapshot in a local JSON file.
type FileStore struct {
	Path string

	mu sync.Mutex
}

type fileRecord struct {
	Pool      model.PoolRecord  `json:"pool"`
	Balances  map[string]string `json:"balances"`
	UpdatedAt string            `json:"updated_at"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) Commit(ctx context.Context, changes model.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.loadLocked()
	if err != nil {
		return err
	}
	if !ok {
		snap.Balances = make(map[common.Address]*big.Int)
	}
	snap.Pool = changes.Pool.Copy()
	applyBalances(snap.Balances, changes.Balances)
	return s.writeLocked(snap)
}

func (s *FileStore) loadLocked() (Snapshot, bool, error) {
	if s.Path == "" {
		return Snapshot{}, false, fmt.Errorf("state path is required")
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read state: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse state: %w", err)
	}

	balances := make(map[common.Address]*big.Int, len(rec.Balances))
	for account, value := range rec.Balances {
		if !common.IsHexAddress(account) {
			return Snapshot{}, false, fmt.Errorf("parse state: invalid account %s", account)
		}
		bal, ok := new(big.Int).SetString(value, 10)
		if !ok || bal.Sign() < 0 {
			return Snapshot{}, false, fmt.Errorf("parse state: invalid balance %q for %s", value, account)
		}
		balances[common.HexToAddress(account)] = bal
	}
	return Snapshot{Pool: rec.Pool.Copy(), Balances: balances}, true, nil
}

func (s *FileStore) writeLocked(snap Snapshot) error {
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	rec := fileRecord{
		Pool:      snap.Pool,
		Balances:  make(map[string]string, len(snap.Balances)),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for account, bal := range snap.Balances {
		rec.Balances[account.Hex()] = bal.String()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
