package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/app"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile - пользователи и слоты для наполнения базы
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
	Slots []SeedSlot `yaml:"slots"`
}

type SeedUser struct {
	TelegramID int64  `yaml:"telegram_id"`
	Username   string `yaml:"username,omitempty"`
	FirstName  string `yaml:"first_name,omitempty"`
	LastName   string `yaml:"last_name,omitempty"`
}

type SeedSlot struct {
	// Owner - telegram_id одного из пользователей файла
	Owner     int64     `yaml:"owner"`
	Title     string    `yaml:"title"`
	Start     time.Time `yaml:"start"`
	End       time.Time `yaml:"end"`
	Swappable bool      `yaml:"swappable,omitempty"`
}

// SeedResult - сколько записей создано
type SeedResult struct {
	Users int
	Slots int
}

// LoadSeedFile читает YAML, неизвестные поля считаются ошибкой
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	known := make(map[int64]bool, len(seed.Users))
	for i, u := range seed.Users {
		if u.TelegramID == 0 {
			return nil, fmt.Errorf("users[%d]: telegram_id is required", i)
		}
		known[u.TelegramID] = true
	}
	for i, s := range seed.Slots {
		if !known[s.Owner] {
			return nil, fmt.Errorf("slots[%d]: owner %d is not listed in users", i, s.Owner)
		}
	}

	return &seed, nil
}

// ApplySeed регистрирует пользователей и создаёт их слоты через сервисы,
// так что к данным применяются те же проверки, что и в боте
func ApplySeed(ctx context.Context, seed *SeedFile, users *service.UserService, slots *service.SlotService) (SeedResult, error) {
	var res SeedResult
	ids := make(map[int64]int64, len(seed.Users))

	for _, u := range seed.Users {
		user, err := users.RegisterUser(ctx, u.TelegramID, u.Username, u.FirstName, u.LastName, "")
		if err != nil {
			return res, fmt.Errorf("register user %d: %w", u.TelegramID, err)
		}
		ids[u.TelegramID] = user.ID
		res.Users++
	}

	for _, s := range seed.Slots {
		ownerID := ids[s.Owner]
		slot, err := slots.CreateSlot(ctx, ownerID, s.Title, s.Start, s.End)
		if err != nil {
			return res, fmt.Errorf("create slot %q: %w", s.Title, err)
		}
		if s.Swappable {
			if _, err := slots.SetSlotStatus(ctx, ownerID, slot.ID, model.SlotStatusSwappable); err != nil {
				return res, fmt.Errorf("open slot %q for swap: %w", s.Title, err)
			}
		}
		res.Slots++
	}

	return res, nil
}

func NewSeedCmd() *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "seed",
		Short: "Load users and slots from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := LoadSeedFile(file)
			if err != nil {
				return err
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			storage, err := app.OpenStorage(cmd.Context(), cfg, cfg.AutoMigrate, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			res, err := ApplySeed(cmd.Context(), seed,
				service.NewUserService(storage.Store, logger),
				service.NewSlotService(storage.Store, logger))
			if err != nil {
				return err
			}

			logger.Info("Seed applied", zap.Int("users", res.Users), zap.Int("slots", res.Slots))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d slots\n", res.Users, res.Slots)
			return nil
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "path to seed YAML")
	_ = c.MarkFlagRequired("file")
	return c
}
