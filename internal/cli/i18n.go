package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"finitefield.org/heara-web/internal/i18n"
)

var errIncompleteDictionaries = errors.New("dictionaries incomplete")

func newI18nCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "i18n",
		Short: "Inspect the translation dictionaries",
	}
	cmd.AddCommand(newI18nCheckCommand())
	cmd.AddCommand(newI18nKeysCommand())
	return cmd
}

type dictionaryFlags struct {
	dir      string
	fallback string
	locales  []string
}

func (f *dictionaryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory of <locale>.yaml files (default: embedded dictionaries)")
	cmd.Flags().StringVar(&f.fallback, "fallback", i18n.DefaultLocale, "fallback locale")
	cmd.Flags().StringSliceVar(&f.locales, "locales", []string{i18n.English, i18n.Hebrew}, "locales to load")
}

func (f *dictionaryFlags) load() (*i18n.Bundle, error) {
	var (
		fsys fs.FS
		err  error
	)
	if strings.TrimSpace(f.dir) != "" {
		fsys = os.DirFS(f.dir)
	} else if fsys, err = i18n.Locales(); err != nil {
		return nil, err
	}
	return i18n.Load(fsys, f.fallback, f.locales)
}

func newI18nCheckCommand() *cobra.Command {
	var flags dictionaryFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report keys missing from non-fallback dictionaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := flags.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			missing := bundle.Missing()
			for _, m := range missing {
				fmt.Fprintf(out, "%s\t%s\n", m.Locale, m.Key)
			}
			if len(missing) > 0 {
				return fmt.Errorf("%w: %d missing keys", errIncompleteDictionaries, len(missing))
			}
			fmt.Fprintf(out, "ok: %s complete against %s\n", strings.Join(bundle.Supported(), ", "), bundle.Fallback())
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newI18nKeysCommand() *cobra.Command {
	var flags dictionaryFlags
	var html bool
	cmd := &cobra.Command{
		Use:   "keys <locale>",
		Short: "List the keys of a dictionary with their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := flags.load()
			if err != nil {
				return err
			}
			lang := bundle.Normalize(args[0])
			out := cmd.OutOrStdout()
			for _, key := range bundle.Keys(lang) {
				value, _ := bundle.Lookup(lang, key)
				if html {
					value, _ = bundle.LookupHTML(lang, key)
				}
				fmt.Fprintf(out, "%s\t%s\n", key, value)
			}
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&html, "html", false, "print the rendered HTML instead of the source")
	return cmd
}
