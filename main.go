package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unembed/config"
	"unembed/ext"
	"unembed/logger"
	"unembed/models"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagReferer string
	flagPretty  bool
)

var rootCmd = &cobra.Command{
	Use:     "unembed <url> [url...]",
	Short:   "Resolve streaming-site embed pages into direct stream URLs",
	Long:    "unembed takes embed page URLs and prints the playable streams behind\nthem as JSON, one document per input URL. Unsupported hosts and dead\nembeds resolve to an empty stream list instead of an error.",
	Version: Version,
	Args:    cobra.MinimumNArgs(1),
	RunE:    run,

	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&flagReferer, "referer", "r", "", "Referer forwarded to extractors that accept one")
	rootCmd.Flags().BoolVarP(&flagPretty, "pretty", "p", false, "Indent the JSON output")
}

// resolution is one output document: the input URL and whatever
// streams it resolved to.
type resolution struct {
	URL     string              `json:"url"`
	Streams []*models.RawStream `json:"streams"`
}

func run(cmd *cobra.Command, args []string) error {
	zap.S().Debugf("loaded %d extractors", len(ext.List))

	for _, rawURL := range args {
		streams := ext.ResolveRequest(cmd.Context(), &models.Request{
			URL:     rawURL,
			Referer: flagReferer,
		})
		if streams == nil {
			streams = []*models.RawStream{}
		}
		if err := emit(&resolution{URL: rawURL, Streams: streams}); err != nil {
			return err
		}
	}
	return nil
}

func emit(result *resolution) error {
	var (
		body []byte
		err  error
	)
	if flagPretty {
		body, err = sonic.ConfigDefault.MarshalIndent(result, "", "  ")
	} else {
		body, err = sonic.ConfigDefault.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(body))
	return nil
}

func main() {
	logger.Init()
	defer logger.Sync()

	// load environment variables and configurations
	config.Load()

	logger.SetLevel(config.Env.LogLevel)
	logger.SetLogFile(config.Env.LogFile)

	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
