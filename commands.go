package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nPaBwaYT/aesfile/config"
	"github.com/nPaBwaYT/aesfile/cripta"
	"github.com/nPaBwaYT/aesfile/keystore"
	"github.com/nPaBwaYT/aesfile/logger"
)

// app carries the state shared by all subcommands once the root pre-run hook
// has loaded the configuration.
type app struct {
	configPath   string
	logLevel     string
	keystorePath string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "aesfile",
		Short: "AES-128 file encryption tool",
		Long: `aesfile encrypts and decrypts whole files with AES-128 in CBC (default)
or ECB mode using PKCS#7 padding. Keys can be passed as hex or generated and
kept in a local SQLite keystore.

Settings come from the YAML file given by --config, then AESFILE_* environment
variables, then command line flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warning, error")
	flags.StringVar(&a.keystorePath, "keystore", "", "Path to the keystore database")

	rootCmd.AddCommand(
		a.newKeygenCmd(),
		a.newCryptCmd(true),
		a.newCryptCmd(false),
		a.newKeysCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.LogLevel = strings.ToLower(a.logLevel)
	}
	if a.keystorePath != "" {
		cfg.KeystorePath = a.keystorePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log *zap.Logger
	if cfg.Log.FilePath != "" {
		log, err = logger.New(&cfg.Log)
	} else {
		log, err = logger.NewWithWriter(&cfg.Log, cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) openStore(cmd *cobra.Command) (*keystore.Store, error) {
	return keystore.Open(cmd.Context(), a.cfg.KeystorePath, a.log)
}

func (a *app) newKeygenCmd() *cobra.Command {
	var name, mode string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random key and IV and store them in the keystore",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode == "" {
				mode = a.cfg.Mode
			}
			m, err := cripta.ParseMode(mode)
			if err != nil {
				return err
			}

			key, iv, err := cripta.GenerateKeyIV()
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rec := &keystore.Record{
				Name:   name,
				KeyHex: hex.EncodeToString(key),
				IVHex:  hex.EncodeToString(iv),
				Mode:   m.String(),
			}
			if err := store.Put(cmd.Context(), rec); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:   %s\n", rec.ID)
			fmt.Fprintf(out, "key:  %s\n", rec.KeyHex)
			fmt.Fprintf(out, "iv:   %s\n", rec.IVHex)
			fmt.Fprintf(out, "mode: %s\n", rec.Mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Label for the stored key")
	cmd.Flags().StringVar(&mode, "mode", "", "Preferred mode for this key: cbc or ecb")
	return cmd
}

// cryptOptions are the flags shared by encrypt and decrypt.
type cryptOptions struct {
	input, output string
	keyHex, ivHex string
	keyID         string
	mode          string
	workers       int
	text          bool
}

func (a *app) newCryptCmd(encrypt bool) *cobra.Command {
	opts := &cryptOptions{}

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCrypt(cmd, opts, encrypt)
		},
	}
	if encrypt {
		cmd.Use = "encrypt"
		cmd.Short = "Encrypt a file"
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Input file path")
	f.StringVarP(&opts.output, "output", "o", "", "Output file path")
	f.StringVar(&opts.keyHex, "key", "", "Key as 32 hex characters")
	f.StringVar(&opts.ivHex, "iv", "", "IV as 32 hex characters (optional in ECB mode)")
	f.StringVar(&opts.keyID, "key-id", "", "ID of a keystore record to use instead of --key/--iv")
	f.StringVar(&opts.mode, "mode", "", "Cipher mode: cbc or ecb")
	f.IntVar(&opts.workers, "workers", 0, "Parallel workers, 0 uses the config value")
	if !encrypt {
		f.BoolVar(&opts.text, "text", false, "Write the plaintext as printable text, one line per block")
	}

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("key", "key-id")
	cmd.MarkFlagsMutuallyExclusive("iv", "key-id")
	cmd.MarkFlagsOneRequired("key", "key-id")

	return cmd
}

func (a *app) runCrypt(cmd *cobra.Command, opts *cryptOptions, encrypt bool) error {
	engine, err := a.buildEngine(cmd, opts)
	if err != nil {
		return err
	}
	var fc cripta.FileCipher = engine

	start := time.Now()
	switch {
	case encrypt:
		err = fc.EncryptFile(opts.input, opts.output)
	case opts.text:
		err = fc.DecryptFileText(opts.input, opts.output)
	default:
		err = fc.DecryptFile(opts.input, opts.output)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	verb := "decrypted"
	if encrypt {
		verb = "encrypted"
	}
	reportDone(cmd.OutOrStdout(), verb, opts.input, opts.output, engine.Mode(), elapsed)
	return nil
}

// buildEngine resolves key, IV, mode and workers from the keystore record or
// the hex flags, then from flags over config.
func (a *app) buildEngine(cmd *cobra.Command, opts *cryptOptions) (*cripta.Engine, error) {
	mode := a.cfg.Mode
	var keyHex, ivHex string

	if opts.keyID != "" {
		store, err := a.openStore(cmd)
		if err != nil {
			return nil, err
		}
		rec, err := store.Get(cmd.Context(), opts.keyID)
		store.Close()
		if err != nil {
			return nil, err
		}
		keyHex, ivHex, mode = rec.KeyHex, rec.IVHex, rec.Mode
	} else {
		keyHex, ivHex = opts.keyHex, opts.ivHex
	}
	if opts.mode != "" {
		mode = opts.mode
	}

	m, err := cripta.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	key, err := cripta.ParseHexBlock(keyHex)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}

	iv := make([]byte, cripta.BlockSize)
	switch {
	case ivHex != "":
		if iv, err = cripta.ParseHexBlock(ivHex); err != nil {
			return nil, fmt.Errorf("iv: %w", err)
		}
	case m == cripta.ModeCBC:
		return nil, fmt.Errorf("%w: CBC mode needs an IV", cripta.ErrInvalidKeyLength)
	}

	workers := a.cfg.EffectiveWorkers()
	if opts.workers > 0 {
		workers = opts.workers
	}

	return cripta.NewEngine(key, iv,
		cripta.WithMode(m),
		cripta.WithWorkers(workers),
		cripta.WithLogger(a.log),
	)
}

func reportDone(w io.Writer, verb, input, output string, mode cripta.Mode, elapsed time.Duration) {
	var size int64
	if info, err := os.Stat(input); err == nil {
		size = info.Size()
	}

	rate := "n/a"
	if secs := elapsed.Seconds(); secs > 0 {
		rate = humanize.Bytes(uint64(float64(size)/secs)) + "/s"
	}

	fmt.Fprintf(w, "%s %s -> %s\n", verb, input, output)
	fmt.Fprintf(w, "  mode: %s\n", mode)
	fmt.Fprintf(w, "  size: %s\n", humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "  time: %s (%s)\n", elapsed.Round(time.Microsecond), rate)
}

func (a *app) newKeysCmd() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage keystore records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no keys stored")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "%s  %-4s  %-20s  %s\n", rec.ID, rec.Mode, rec.Name, humanize.Time(rec.CreatedAt))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored key and IV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", rec.ID)
			fmt.Fprintf(out, "name:    %s\n", rec.Name)
			fmt.Fprintf(out, "key:     %s\n", rec.KeyHex)
			fmt.Fprintf(out, "iv:      %s\n", rec.IVHex)
			fmt.Fprintf(out, "mode:    %s\n", rec.Mode)
			fmt.Fprintf(out, "created: %s\n", rec.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	keysCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return keysCmd
}

func newConfigCmd() *cobra.Command {
	var output string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	exampleCmd := &cobra.Command{
		Use:   "example",
		Short: "Write the default configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.SaveExample(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example config written to %s\n", output)
			return nil
		},
	}
	exampleCmd.Flags().StringVarP(&output, "output", "o", "aesfile.yaml", "Destination path")

	configCmd.AddCommand(exampleCmd)
	return configCmd
}
