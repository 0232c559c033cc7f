package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/urfave/cli/v3"

	"github.com/sp00kydogz/CuadernoCLI/internal"
	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
)

// errNoIndex replaces apperr.ErrNotFound from index reads with a hint.
var errNoIndex = errors.New("index not built; run `cuaderno reindex` first")

// openService loads the config and opens the notebook with a text logger on
// stderr. Only warnings are shown unless --verbose is set.
func openService(cmd *cli.Command, extra ...noteservice.Option) (*noteservice.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return internal.OpenService(cfg, logger, extra...)
}

func indexErr(err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return errNoIndex
	}
	return err
}

func reindexCmd(ctx context.Context, cmd *cli.Command) error {
	var extra []noteservice.Option
	if cmd.Bool("no-summary") {
		extra = append(extra, noteservice.WithSummary(false))
	}
	svc, err := openService(cmd, extra...)
	if err != nil {
		return err
	}
	idx, err := svc.Reindex(ctx)
	if err != nil {
		return err
	}
	printReindex(os.Stdout, idx, svc.IndexPath())
	return nil
}

func listCmd(ctx context.Context, cmd *cli.Command) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	idx, err := svc.LoadIndex(ctx)
	if err != nil {
		return indexErr(err)
	}
	entries, err := svc.List(ctx, strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return indexErr(err)
	}
	printEntries(os.Stdout, entries, positions(idx), svc.Now())
	return nil
}

func searchCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("search: a query is required")
	}
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	idx, err := svc.LoadIndex(ctx)
	if err != nil {
		return indexErr(err)
	}
	hits, err := svc.Search(ctx, strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return indexErr(err)
	}
	printHits(os.Stdout, hits, positions(idx))
	return nil
}

func viewCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return fmt.Errorf("view: expected one note number or path")
	}
	svc, err := openService(cmd)
	if err != nil {
		return err
	}

	ref := cmd.Args().First()
	if ref == "" {
		idx, err := svc.LoadIndex(ctx)
		if err != nil {
			return indexErr(err)
		}
		e, err := pickEntry(idx.Entries)
		if errors.Is(err, errNothingPicked) {
			fmt.Fprintln(os.Stderr, dimStyle.Render("no note selected"))
			return nil
		}
		if err != nil {
			return err
		}
		ref = e.Path
	}

	note, err := readRef(ctx, svc, ref)
	if err != nil {
		return err
	}
	if cmd.Bool("raw") {
		fmt.Fprint(os.Stdout, note.Content)
		return nil
	}
	printNote(os.Stdout, note)
	return nil
}

func newCmd(ctx context.Context, cmd *cli.Command) error {
	title := strings.Join(cmd.Args().Slice(), " ")
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	note, err := svc.CreateNote(ctx, cmd.String("dir"), title)
	if err != nil {
		return err
	}
	printDone(os.Stdout, "created", note.Path)
	return nil
}

func metaCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("meta: expected a note and at least one operation")
	}
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	path, err := svc.ResolvePath(ctx, cmd.Args().First())
	if err != nil {
		return indexErr(err)
	}
	note, err := svc.EditMeta(ctx, path, metaOps(cmd.Args().Tail()))
	if err != nil {
		return err
	}
	printHeader(os.Stdout, note)
	return nil
}

// metaOps joins shell arguments into one operation string. The shell has
// already split on quotes, so an argument holding whitespace is quoted again
// to stay a single value: `title:Nuevo título` becomes `title:"Nuevo título"`.
func metaOps(args []string) string {
	ops := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.ContainsFunc(arg, unicode.IsSpace) || strings.Contains(arg, `"`) {
			ops = append(ops, arg)
			continue
		}
		if key, value, ok := strings.Cut(arg, ":"); ok && isOpKey(key) {
			ops = append(ops, key+`:"`+value+`"`)
			continue
		}
		ops = append(ops, `"`+arg+`"`)
	}
	return strings.Join(ops, " ")
}

func isOpKey(key string) bool {
	if strings.HasPrefix(key, "+") || strings.HasPrefix(key, "-") {
		key = key[1:]
	}
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func appendCmd(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("append: expected a note and some text")
	}
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	path, err := svc.ResolvePath(ctx, cmd.Args().First())
	if err != nil {
		return indexErr(err)
	}
	note, err := svc.AppendNote(ctx, path, strings.Join(cmd.Args().Tail(), " "))
	if err != nil {
		return err
	}
	printDone(os.Stdout, "appended", note.Path)
	return nil
}

func readRef(ctx context.Context, svc *noteservice.Service, ref string) (*noteservice.NoteDetail, error) {
	path, err := svc.ResolvePath(ctx, ref)
	if err != nil {
		return nil, indexErr(err)
	}
	return svc.ReadNote(ctx, path)
}
