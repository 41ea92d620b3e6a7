// Package cli is the terminal front end of the tracker.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskquest/internal/config"
	"taskquest/internal/model"
	"taskquest/internal/repository"
	"taskquest/internal/service"
	"taskquest/internal/view"
)

// needsDB marks commands that use the sqlite database even when the
// document lives in another backend.
const needsDB = "needs-db"

// app holds what every subcommand shares for one invocation.
type app struct {
	configFile string
	yes        bool

	cfg     config.Config
	logger  *log.Logger
	db      *gorm.DB
	store   *service.Store
	closers []func() error
}

// Execute runs the command tree with args and releases storage afterwards.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{}
	defer a.teardown()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "taskquest",
		Short:             "TaskQuest turns finished tasks into experience and levels",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML config file (environment variables win)")
	root.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newCategoryCommand(a),
		newTaskCommand(a),
		newDailyCommand(a),
		newProgressCommand(a),
		newResetCommand(a),
		newBotCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = log.New()
	a.logger.SetOutput(cmd.ErrOrStderr())
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	a.logger.SetLevel(level)

	ctx := cmd.Context()
	if cfg.StorageBackend == config.BackendSQLite || cmd.Annotations[needsDB] == "true" {
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.db = db
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	gateway, closeGateway, err := repository.Open(ctx, cfg, a.db)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeGateway)

	a.store = service.NewStore(gateway, service.Options{
		Location: cfg.Location,
		Logger:   a.logger,
	})
	if err := a.store.Open(ctx); err != nil {
		return err
	}

	if cmd.Annotations[needsDB] != "true" {
		out := cmd.OutOrStdout()
		a.store.Subscribe(service.ListenerFuncs{
			OnLevelUp: func(name string, level int) {
				fmt.Fprintln(out, levelUpLine(name, level))
			},
		})
	}
	return nil
}

func (a *app) teardown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.WithError(err).Warn("close storage")
		}
	}
	a.closers = nil
}

// confirmer asks on the command's stdin unless --yes was given.
func (a *app) confirmer(cmd *cobra.Command) service.Confirmer {
	if a.yes {
		return service.AlwaysConfirm
	}
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	return service.ConfirmFunc(func(message string) bool {
		fmt.Fprintf(out, "%s [y/N] ", message)
		line, _ := in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

// category resolves a 1-based position or id against a fresh snapshot.
func (a *app) category(ref string) (*model.Category, error) {
	doc, _ := a.store.Snapshot()
	cat := view.FindCategory(doc, ref)
	if cat == nil {
		return nil, fmt.Errorf("category %q not found", ref)
	}
	return cat, nil
}
