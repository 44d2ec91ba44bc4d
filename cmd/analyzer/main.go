package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Technical analysis backend for NEPSE securities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(stocksCmd())
	rootCmd.AddCommand(clearCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}
