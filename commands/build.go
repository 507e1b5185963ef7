// Package commands has top level command drivers.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/vainilie/imabi/fetcher"
	"github.com/vainilie/imabi/processor"
	"github.com/vainilie/imabi/state"
)

// Build is "build" command body.
func Build(ctx *cli.Context) error {

	const (
		errPrefix = "build: "
		errCode   = 1
	)

	env := ctx.Generic(state.FlagName).(*state.LocalEnv)

	dst := ctx.Args().Get(0)
	overwrite := ctx.Bool("ow")
	testLessons := 0
	if ctx.Bool("test") {
		testLessons = ctx.Int("test-lessons")
		if testLessons <= 0 {
			testLessons = 5
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ftch := fetcher.NewHTTP(env.Cfg.Site.UserAgent, time.Duration(env.Cfg.Site.TimeoutSec)*time.Second, env.Log)

	if err := buildBook(runCtx, dst, overwrite, testLessons, ftch, env); err != nil {
		return cli.Exit(fmt.Errorf("%s%w", errPrefix, err), errCode)
	}
	return nil
}

func buildBook(ctx context.Context, dst string, overwrite bool, testLessons int, ftch fetcher.Fetcher, env *state.LocalEnv) error {

	var fname, id string

	env.Log.Info("Build starting", zap.String("site", env.Cfg.Site.BaseURL))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			env.Log.Error("Build ended with panic", zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
		} else {
			env.Log.Info("Build completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", fname), zap.String("ref_id", id))
		}
	}(time.Now())

	p, err := processor.New(dst, overwrite, testLessons, ftch, env)
	if err != nil {
		return err
	}
	id = p.Book.ID.String() // store for reference in the log

	if err = p.Process(ctx); err != nil {
		return err
	}
	if fname, err = p.Save(); err != nil {
		return err
	}

	// store build result
	env.Rpt.Store(fmt.Sprintf("imabi-%s/%s", id, filepath.Base(fname)), fname)

	return p.Clean()
}
