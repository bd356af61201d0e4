// Package sqlite persists conversations, the audit log, parties and the
// party ledger in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/nathoo/shopkeep/engine/effects"
	"github.com/nathoo/shopkeep/engine/save"
	"github.com/nathoo/shopkeep/engine/state"
	"github.com/nathoo/shopkeep/storage/sqlite/migrations"
	"github.com/nathoo/shopkeep/types"
)

// Store implements state.Store and effects.Ledger.
type Store struct {
	db *sql.DB
}

var (
	_ state.Store    = (*Store)(nil)
	_ effects.Ledger = (*Store)(nil)
)

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadConversation returns state.ErrNotFound for unknown characters.
func (s *Store) LoadConversation(ctx context.Context, characterID string) (types.ConversationSnapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM conversations WHERE character_id = ?`, characterID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ConversationSnapshot{}, state.ErrNotFound
	}
	if err != nil {
		return types.ConversationSnapshot{}, fmt.Errorf("load conversation: %w", err)
	}
	return save.Load(data)
}

func (s *Store) SaveConversation(ctx context.Context, snap types.ConversationSnapshot) error {
	data, err := save.Save(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (character_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (character_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snap.CharacterID, data, toMillis(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *Store) AppendAuditLog(ctx context.Context, snap types.ConversationSnapshot) error {
	data, err := save.Save(snap)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (character_id, data, created_at) VALUES (?, ?, ?)`,
		snap.CharacterID, data, toMillis(snap.UpdatedAt),
	); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// AuditLog returns the audited snapshots for a character, oldest first.
func (s *Store) AuditLog(ctx context.Context, characterID string) ([]types.ConversationSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM audit_log WHERE character_id = ? ORDER BY id`, characterID)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []types.ConversationSnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		snap, err := save.Load(data)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PruneAudit deletes audit records older than before.
func (s *Store) PruneAudit(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, toMillis(before))
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) GetParty(ctx context.Context, id string) (types.Party, error) {
	var (
		p                types.Party
		inventory, stash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, balance, inventory, stash FROM parties WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Balance, &inventory, &stash)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Party{}, fmt.Errorf("%w: %s", effects.ErrPartyNotFound, id)
	}
	if err != nil {
		return types.Party{}, fmt.Errorf("get party: %w", err)
	}
	if err := json.Unmarshal([]byte(inventory), &p.Inventory); err != nil {
		return types.Party{}, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal([]byte(stash), &p.Stash); err != nil {
		return types.Party{}, fmt.Errorf("decode stash: %w", err)
	}
	return p, nil
}

func (s *Store) CreateParty(ctx context.Context, p types.Party) error {
	inventory, stash, err := encodeItems(p.Inventory, p.Stash)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parties (id, name, balance, inventory, stash) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Balance, inventory, stash,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", effects.ErrPartyExists, p.ID)
	}
	if err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return nil
}

func (s *Store) UpdatePartyBalance(ctx context.Context, id string, balance int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE parties SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return mustAffect(res, id)
}

func (s *Store) UpdatePartyItems(ctx context.Context, id string, inventory, stash []string) error {
	inv, st, err := encodeItems(inventory, stash)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE parties SET inventory = ?, stash = ? WHERE id = ?`, inv, st, id)
	if err != nil {
		return fmt.Errorf("update items: %w", err)
	}
	return mustAffect(res, id)
}

func (s *Store) RecordTransaction(ctx context.Context, e types.LedgerEntry) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger (id, party_id, character_id, action, item_name, amount, balance_after, created_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PartyID, e.CharacterID, e.Action, e.ItemName, e.Amount, e.BalanceAfter, toMillis(e.CreatedAt), e.Note,
	); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

// ListTransactions returns up to limit entries for a party, newest first.
// A limit of zero returns them all.
func (s *Store) ListTransactions(ctx context.Context, partyID string, limit int) ([]types.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, party_id, character_id, action, item_name, amount, balance_after, created_at, note
		 FROM ledger WHERE party_id = ? ORDER BY seq DESC LIMIT ?`, partyID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []types.LedgerEntry
	for rows.Next() {
		var (
			e  types.LedgerEntry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.PartyID, &e.CharacterID, &e.Action, &e.ItemName,
			&e.Amount, &e.BalanceAfter, &at, &e.Note); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		e.CreatedAt = fromMillis(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func encodeItems(inventory, stash []string) (string, string, error) {
	if inventory == nil {
		inventory = []string{}
	}
	if stash == nil {
		stash = []string{}
	}
	inv, err := json.Marshal(inventory)
	if err != nil {
		return "", "", fmt.Errorf("encode inventory: %w", err)
	}
	st, err := json.Marshal(stash)
	if err != nil {
		return "", "", fmt.Errorf("encode stash: %w", err)
	}
	return string(inv), string(st), nil
}

func mustAffect(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", effects.ErrPartyNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
