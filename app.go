package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "phonecalls/internal/config"
	"phonecalls/internal/graphql"
	"phonecalls/internal/http/handlers"
	"phonecalls/internal/repositories"
	"phonecalls/internal/utils"

	"go.uber.org/zap"
)

// app holds the process-wide dependencies shared by the commands.
type app struct {
	env    intconfig.Env
	log    *zap.Logger
	loc    *time.Location
	source handlers.Source
	db     *sql.DB
}

func newApp(ctx context.Context) (*app, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return nil, err
	}

	log, err := utils.NewLogger(env.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	utils.SetLogger(log)

	loc, err := env.Location()
	if err != nil {
		return nil, err
	}

	a := &app{env: env, log: log, loc: loc}
	switch env.CallsSource {
	case intconfig.SourceMySQL:
		db, err := intconfig.ConnectDB(ctx, env.DB)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.source = repositories.CallRepository{DB: db}
	default:
		a.source = repositories.GraphQLCallRepository{Client: graphql.NewClient(graphql.Config{
			URL:          env.GraphQL.URL,
			Timeout:      env.GraphQL.Timeout,
			Token:        env.GraphQL.Token,
			RefreshToken: env.GraphQL.RefreshToken,
			Username:     env.GraphQL.Username,
			Password:     env.GraphQL.Password,
		})}
	}

	log.Info("app configured",
		zap.String("env", env.AppEnv),
		zap.String("calls_source", env.CallsSource),
		zap.String("timezone", loc.String()),
	)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}
