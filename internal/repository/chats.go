package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tuanvm/geminichat/internal/domain"
)

// ChatRepository stores one transcript snapshot per completed turn,
// keyed by session id.
type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Insert(ctx context.Context, sessionID string, history domain.Transcript) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	const query = `INSERT INTO chats (session_id, history) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, sessionID, payload); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.StoredChat, error) {
	const query = `SELECT session_id, history, created_at
		FROM chats
		WHERE session_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.StoredChat
	for rows.Next() {
		var (
			chat    domain.StoredChat
			payload []byte
		)
		if err := rows.Scan(&chat.SessionID, &payload, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}
		if err := json.Unmarshal(payload, &chat.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat rows: %w", err)
	}
	return chats, nil
}
