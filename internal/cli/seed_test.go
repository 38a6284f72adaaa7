package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/memory"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadSeedFile(t *testing.T) {
	seed, err := LoadSeedFile("testdata/seed.yaml")
	require.NoError(t, err)

	require.Len(t, seed.Users, 2)
	require.Len(t, seed.Slots, 3)
	assert.Equal(t, int64(1001), seed.Slots[0].Owner)
	assert.Equal(t, 9, seed.Slots[0].Start.Hour())
	assert.True(t, seed.Slots[1].Swappable)
	assert.False(t, seed.Slots[2].Swappable)
}

func TestLoadSeedFileRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown field": "users:\n  - telegram_id: 1\n    nickname: x\n",
		"missing id":    "users:\n  - username: x\n",
		"unknown owner": "users:\n  - telegram_id: 1\nslots:\n  - owner: 2\n    title: t\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

			_, err := LoadSeedFile(path)
			assert.Error(t, err)
		})
	}
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	logger := zap.NewNop()
	users := service.NewUserService(store, logger)
	slots := service.NewSlotService(store, logger)
	market := service.NewMarketplace(store, logger)

	seed, err := LoadSeedFile("testdata/seed.yaml")
	require.NoError(t, err)

	res, err := ApplySeed(ctx, seed, users, slots)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 2, Slots: 3}, res)

	alice, err := users.GetByTelegramID(ctx, 1001)
	require.NoError(t, err)
	require.NotNil(t, alice)

	// Alice видит в маркете только открытый слот Bob
	listed, err := market.ListMarketplace(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Дежурство вторник", listed[0].Title)
	assert.Equal(t, model.SlotStatusSwappable, listed[0].Status)
}

func TestApplySeedRejectsInvalidSlot(t *testing.T) {
	store := memory.NewStore()
	logger := zap.NewNop()

	seed := &SeedFile{
		Users: []SeedUser{{TelegramID: 1}},
		Slots: []SeedSlot{{Owner: 1, Title: "пусто"}},
	}

	_, err := ApplySeed(context.Background(), seed,
		service.NewUserService(store, logger), service.NewSlotService(store, logger))
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRoot()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "swapbot dev")
}
