package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/session"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/gofinances/gofinances/internal/transactions"
)

// env is an opened database with the session already hydrated.
type env struct {
	kv           *storage.SQLiteStorage
	session      *session.Store
	transactions *transactions.Store
}

func (e *env) Close() error {
	return e.kv.Close()
}

// openStorage opens the configured database and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	kv, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := kv.Migrate(ctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return kv, nil
}

// openEnv opens storage and hydrates the session before anything reads transactions.
func (a *app) openEnv(ctx context.Context) (*env, error) {
	kv, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(kv)
	if err := sess.Hydrate(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}

	return &env{
		kv:           kv,
		session:      sess,
		transactions: transactions.NewStore(kv),
	}, nil
}

// requireUser returns the signed-in user and its session context.
func (e *env) requireUser() (model.User, session.Context, error) {
	sc, err := e.session.Context()
	switch {
	case errors.Is(err, session.ErrNotSignedIn):
		return model.User{}, session.Context{}, common.NewUserError(
			"Você não está conectado. Use \"gofinances signin\" para entrar.", err)
	case err != nil:
		return model.User{}, session.Context{}, err
	}

	user, _ := e.session.Current()
	return user, sc, nil
}

// loadRecords reads the user's transactions. Storage failures print a notice and
// yield no records so the view still renders.
func (e *env) loadRecords(ctx context.Context, out io.Writer, sc session.Context) ([]model.Transaction, error) {
	records, err := e.transactions.Load(ctx, sc.UserID)
	if err != nil {
		if notice := cli.StorageNotice(err); notice != "" {
			fmt.Fprintln(out, notice)
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}
