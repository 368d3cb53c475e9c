// Command form4sent ingests SEC Form 4 filings for a list of tickers and
// classifies the sentiment of each filing exactly once.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agulab/form4sent/internal/ai"
	"github.com/agulab/form4sent/internal/classify"
	"github.com/agulab/form4sent/internal/config"
	"github.com/agulab/form4sent/internal/edgar"
	"github.com/agulab/form4sent/internal/ingest"
	"github.com/agulab/form4sent/internal/normalize"
	"github.com/agulab/form4sent/internal/notify"
	"github.com/agulab/form4sent/internal/store"
	"github.com/agulab/form4sent/internal/tickers"
)

var (
	cfgPath string
	cfg     *config.Config
	log     *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "form4sent",
	Short:         "Ingest and classify the sentiment of SEC Form 4 filings",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		zl, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		log = zl.Sugar()
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download filings for every ticker in the list and archive them",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)

		since, err := cfg.SinceTime()
		if err != nil {
			return err
		}

		list, err := tickers.Load(cfg.TickerCSV)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		client := edgar.NewClient(cfg.UserAgent)
		ctrl := ingest.New(st, client, cfg.DownloadDir, log)

		absorbed, runErr := ctrl.Run(cmd.Context(), list, cfg.FormType, since, cfg.Limit)
		log.Infow("ingestion finished", "absorbed", absorbed)

		if total, err := st.CountFilings(); err == nil {
			fmt.Printf("Loaded %d filings into %s\n", total, cfg.DBPath)
		}
		return runErr
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the sentiment of every unclassified archived filing",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		gem, err := ai.NewGemini(cmd.Context(), os.Getenv("GEMINI_API_KEY"), cfg.GeminiModel)
		if err != nil {
			return err
		}

		ctrl := classify.New(st, gem, cfg.Funds, log)
		outcomes, runErr := ctrl.Run(cmd.Context(), cfg.FormType)

		notify.ReportOutcomes(outcomes)
		if err := notify.EmailDigest(outcomes, emailConfig()); err != nil {
			log.Warnw("digest email failed", "error", err)
		}

		if total, err := st.CountVerdicts(); err == nil {
			fmt.Printf("Ledger holds %d verdicts in %s\n", total, cfg.DBPath)
		}
		return runErr
	},
}

var companiesOut string

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Download the SEC company-ticker map as a CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := tickers.DownloadCompanyList(cmd.Context(), tickers.DefaultCompanyMapURL, cfg.UserAgent, companiesOut)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d rows to %s\n", n, companiesOut)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print one archived filing raw and flattened, for diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := st.GetFiling(cfg.FormType)
		if err != nil {
			return err
		}

		fmt.Println("================================================================================")
		fmt.Printf("RAW   (%s / %s)\n", f.Ticker, f.Accession)
		fmt.Println("================================================================================")
		fmt.Println(f.Text)

		fmt.Println("================================================================================")
		fmt.Println("FLATTENED")
		fmt.Println("================================================================================")

		flat, err := normalize.Flatten(f.Text)
		if err != nil {
			return err
		}
		fmt.Println(flat)
		return nil
	},
}

// applyFlagOverrides lets run-scoped flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("csv") {
		cfg.TickerCSV, _ = cmd.Flags().GetString("csv")
	}
	if cmd.Flags().Changed("since") {
		cfg.Since, _ = cmd.Flags().GetString("since")
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("form") {
		cfg.FormType, _ = cmd.Flags().GetString("form")
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}
}

func emailConfig() notify.EmailConfig {
	smtp := cfg.SMTP
	from := smtp.From
	if from == "" {
		from = smtp.User
	}
	return notify.EmailConfig{
		SMTPServer: smtp.Server,
		SMTPPort:   smtp.Port,
		SMTPUser:   smtp.User,
		SMTPPass:   smtp.Pass,
		FromEmail:  from,
		ToEmail:    smtp.To,
		Enabled:    smtp.Server != "" && smtp.User != "" && smtp.Pass != "" && smtp.To != "",
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "form4sent.yaml", "path to config file")

	for _, cmd := range []*cobra.Command{ingestCmd, classifyCmd, inspectCmd} {
		cmd.Flags().String("db", "", "path to the SQLite database (overrides config)")
		cmd.Flags().String("form", "", "form type to process (overrides config)")
	}
	ingestCmd.Flags().String("csv", "", "ticker list CSV (overrides config)")
	ingestCmd.Flags().String("since", "", "only fetch filings accepted on or after this date (YYYY-MM-DD)")
	ingestCmd.Flags().Int("limit", 0, "maximum filings per ticker (overrides config)")
	companiesCmd.Flags().StringVar(&companiesOut, "out", "companies.csv", "output CSV path")

	rootCmd.AddCommand(ingestCmd, classifyCmd, companiesCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
