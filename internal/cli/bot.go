package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskquest/internal/bot"
	"taskquest/internal/repository"
	"taskquest/internal/service"
)

func newBotCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "bot",
		Short:       "Run the Telegram bot with the daily reset and report jobs",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsDB: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateBot(); err != nil {
				return err
			}
			ctx := cmd.Context()

			telegramBot, err := bot.New(a.cfg.TelegramToken, a.store, repository.NewChatRepository(a.db), &a.cfg, a.logger)
			if err != nil {
				return err
			}

			scheduler := service.NewSchedulerService(a.cfg.Location, a.logger)
			if _, err := scheduler.ScheduleDailyReset(a.store, a.cfg.DailyResetTime, telegramBot.Flush); err != nil {
				return fmt.Errorf("schedule daily reset: %w", err)
			}
			if a.cfg.ReportTime != "" {
				if _, err := scheduler.ScheduleDaily("daily-report", a.cfg.ReportTime, telegramBot.SendDailyReports); err != nil {
					return fmt.Errorf("schedule reports: %w", err)
				}
			}
			scheduler.Start()
			defer scheduler.Stop()

			a.logger.WithField("backend", a.cfg.StorageBackend).Info("taskquest bot started")
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot stopped: %w", err)
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
