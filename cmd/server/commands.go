package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/chat"
	"github.com/mindmate/mindmate-backend/internal/database"
	"github.com/mindmate/mindmate-backend/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the SQL tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.OpenSQL(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.InitTables(cmd.Context(), db, cfg.DBDriver); err != nil {
			return err
		}
		log.Info("schema is up to date", zap.String("driver", cfg.DBDriver))
		return nil
	},
}

var (
	seedEmail string
	seedDays  int
)

var seedMoodsCmd = &cobra.Command{
	Use:   "seed-moods",
	Short: "Insert mock mood history for an existing user",
	Long: `Fills the mood tracker of a demo account with one entry per day.

Example:
  mindmate seed-moods --email demo@example.com --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedEmail == "" {
			return errors.New("--email is required")
		}
		ctx := cmd.Context()
		db, err := database.OpenSQL(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.InitTables(ctx, db, cfg.DBDriver); err != nil {
			return err
		}

		user, err := services.NewUserService(db, cfg.DBDriver).GetByEmail(ctx, seedEmail)
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("no user with email %s", seedEmail)
		}
		if err != nil {
			return err
		}

		seed := uint64(time.Now().UnixNano())
		n, err := services.NewMoodService(db, cfg.DBDriver).SeedMock(ctx, user.ID, seedDays, rand.New(rand.NewPCG(seed, seed>>1)))
		if err != nil {
			return err
		}
		log.Info("seeded mood history", zap.Int64("user_id", user.ID), zap.Int("entries", n))
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message through the configured chat provider",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := chat.NewProvider(cmd.Context(), cfg.Chat, log)
		if err != nil {
			return err
		}
		reply, err := provider.Reply(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	seedMoodsCmd.Flags().StringVar(&seedEmail, "email", "", "email of the account to seed")
	seedMoodsCmd.Flags().IntVar(&seedDays, "days", 30, "number of days of history")
}
