package cli

import (
	"errors"
	"fmt"

	"ai-sitebuilder-be/internal/bootstrap"
	"ai-sitebuilder-be/internal/config"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/service"
	"ai-sitebuilder-be/pkg/database"
	"ai-sitebuilder-be/pkg/publish"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

var (
	ownerId   int64
	projectId string
	useMemory bool
	verbose   bool

	// editService is set by the root pre-run, or directly by tests.
	editService service.ISiteEditService
	closeCore   func()
)

var rootCmd = &cobra.Command{
	Use:   "blockctl",
	Short: "Operate on a generated site's blocks",
	Long: `blockctl runs the block edit engine against a generated site without the HTTP API.
It reads the same environment as the server (DB_CONNECTION_STRING, SITE_GENERATED_DIR,
EMBEDDING_PROVIDER, LLM_PROVIDER, ...).`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCore,
	PersistentPostRun: func(*cobra.Command, []string) {
		if closeCore != nil {
			closeCore()
			closeCore = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Int64VarP(&ownerId, "owner", "o", 0, "owner id of the project")
	rootCmd.PersistentFlags().StringVarP(&projectId, "project", "p", "", "project id (the generated folder slug)")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "keep the block index in memory instead of postgres")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine details to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupCore(cmd *cobra.Command, _ []string) error {
	if editService != nil {
		return nil
	}

	cfg := config.Load()
	if useMemory {
		cfg.Site.VectorStore = "memory"
	}

	var db *gorm.DB
	if cfg.Site.VectorStore != "memory" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core, err := bootstrap.NewCore(db, cfg, logger.NewConsoleLogger(level))
	if err != nil {
		return err
	}
	editService = core.EditService
	closeCore = func() {
		core.Close()
		editService = nil
	}
	return nil
}

func currentScope() (entity.Scope, error) {
	if projectId == "" {
		return entity.Scope{}, errors.New("--project is required")
	}
	if publish.Slug(projectId) != projectId {
		return entity.Scope{}, fmt.Errorf("invalid project id %q", projectId)
	}
	return entity.Scope{OwnerId: ownerId, ProjectId: projectId}, nil
}
