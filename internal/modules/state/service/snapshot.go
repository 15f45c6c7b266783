package service

import (
	"context"
	"fmt"

	"paper_bot/internal/models"
	"paper_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// BlobStore — место хранения снапшота между рестартами процесса.
type BlobStore interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) (blob []byte, ok bool, err error)
}

// Keeper сериализует и хранит состояние бота. Кодек отделён от стора, чтобы
// round-trip проверялся без Redis.
type Keeper struct {
	store BlobStore
}

func NewKeeper(store BlobStore) *Keeper {
	return &Keeper{store: store}
}

func Encode(state *models.BotState) ([]byte, error) {
	blob, err := sonic.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}
	return blob, nil
}

func Decode(blob []byte) (*models.BotState, error) {
	var state models.BotState
	if err := sonic.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	return &state, nil
}

func (k *Keeper) Save(ctx context.Context, state *models.BotState) error {
	blob, err := Encode(state)
	if err != nil {
		return err
	}
	if err := k.store.Save(ctx, blob); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}

// Load возвращает nil без ошибки, если снапшота ещё нет (первый запуск).
func (k *Keeper) Load(ctx context.Context) (*models.BotState, error) {
	blob, ok, err := k.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	if !ok {
		logger.Info("no snapshot found, starting fresh")
		return nil, nil
	}
	return Decode(blob)
}
