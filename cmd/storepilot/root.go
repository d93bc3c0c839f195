package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/entrhq/storepilot/pkg/browser"
	"github.com/entrhq/storepilot/pkg/config"
	"github.com/entrhq/storepilot/pkg/filemanager"
	"github.com/entrhq/storepilot/pkg/logging"
	"github.com/entrhq/storepilot/pkg/store"
)

var (
	cfgFile string
	verbose bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storepilot",
		Short: "Automates product maintenance in the shop admin",
		Long: `Storepilot drives the shop admin application through a real browser:
it logs in, edits product descriptions and uploads product images
through the admin's embedded file manager.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.storepilot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newCheckCmd())
	return rootCmd
}

// app bundles a live browser and an authenticated store session.
type app struct {
	cfg     *config.Config
	session *browser.Session
	store   *store.Session
	log     zerolog.Logger
	runLog  *logging.RunLog
}

// connect loads the configuration, launches the browser and logs in.
// The caller must close the returned app.
func connect(cmd *cobra.Command) (*app, error) {
	runLog, err := logging.New(logging.Options{
		RunID:   uuid.NewString()[:8],
		Verbose: verbose,
	})
	log := runLog.Logger
	if err != nil {
		log.Warn().Err(err).Msg("file logging unavailable, console only")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		runLog.Close()
		return nil, err
	}

	session, err := browser.Launch(browser.SessionOptions{Headless: cfg.Headless})
	if err != nil {
		runLog.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	opener := browser.NewFileManagerOpener(session, browser.FileManagerConfig{
		TriggerSelector: cfg.Selectors.ImageTrigger,
		FrameName:       cfg.Selectors.FMFrameName,
		ReadySelector:   cfg.Selectors.FMReady,
		ListingURL:      cfg.Selectors.FMListingURL,
		EntryQuery:      cfg.Selectors.FMEntryQuery,
		CloseButton:     cfg.Selectors.FMCloseButton,
		OpenTimeout:     cfg.Timeouts.Listing(),
	}, log)

	manager := filemanager.NewManager(opener, filemanager.Config{
		Selectors: filemanager.Selectors{
			TreeNode:     cfg.Selectors.FMTreeNode,
			RootNode:     cfg.Selectors.FMRootNode,
			Entry:        cfg.Selectors.FMEntry,
			UploadButton: cfg.Selectors.FMUploadButton,
		},
		Timeouts: filemanager.Timeouts{
			Listing:          cfg.Timeouts.Listing(),
			Dialog:           cfg.Timeouts.Dialog(),
			Ack:              cfg.Timeouts.Ack(),
			MaxClickAttempts: cfg.Timeouts.MaxClickRetries,
		},
		SuccessPhrase: cfg.SuccessPhrase,
		UploadDir:     cfg.UploadDir,
	}, log)

	sess := store.New(session, manager, store.Config{
		BaseURL:        cfg.BaseURL,
		Username:       cfg.Username,
		Password:       cfg.Password,
		LoginPath:      cfg.LoginPath,
		ProductPath:    cfg.ProductPath,
		TokenParam:     cfg.TokenParam,
		ImagesTab:      cfg.ImagesTab,
		DescriptionTab: cfg.DescriptionTab,
		Selectors: store.Selectors{
			LoginUser:      cfg.Selectors.LoginUser,
			LoginPass:      cfg.Selectors.LoginPass,
			LoginSubmit:    cfg.Selectors.LoginSubmit,
			Dashboard:      cfg.Selectors.Dashboard,
			ProductTab:     cfg.Selectors.ProductTab,
			DescriptionBox: cfg.Selectors.DescriptionBox,
			SaveButton:     cfg.Selectors.SaveButton,
			SavedMarker:    cfg.Selectors.SavedMarker,
		},
	}, log)

	if err := sess.Login(cmd.Context()); err != nil {
		_ = session.Close()
		runLog.Close()
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &app{cfg: cfg, session: session, store: sess, log: log, runLog: runLog}, nil
}

func (a *app) close() {
	if err := a.session.Close(); err != nil {
		a.log.Warn().Err(err).Msg("browser shutdown reported an error")
	}
	_ = a.runLog.Close()
}
