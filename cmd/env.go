package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/callcenter"
	"github.com/healthworkers/callcenter/internal/objstore"
	"github.com/healthworkers/callcenter/internal/pipeline"
	"github.com/healthworkers/callcenter/internal/queue"
	"github.com/healthworkers/callcenter/internal/roster"
	"github.com/healthworkers/callcenter/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}

// initObjectStore returns nil when no endpoint is configured.
func initObjectStore() (*objstore.Client, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, nil
	}
	return objstore.New(objstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
	})
}

func location() (*time.Location, error) {
	if cfg.Roster.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(cfg.Roster.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "load timezone %s", cfg.Roster.Timezone)
	}
	return loc, nil
}

func initLoader(obj *objstore.Client, loc *time.Location) *roster.Loader {
	var remote roster.Remote
	if obj != nil {
		remote = obj
	}
	return roster.NewLoader(roster.Config{
		RosterPath:    cfg.Roster.RosterPath,
		EndlinePath:   cfg.Roster.EndlinePath,
		CrosswalkPath: cfg.Roster.CrosswalkPath,
		Columns:       cfg.Roster.Columns,
		Location:      loc,
	}, remote)
}

// initPipeline wires the report store and reference tables into a pipeline.
// The caller closes the returned store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, *objstore.Client, error) {
	loc, err := location()
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	obj, err := initObjectStore()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, nil, err
	}
	loader := initLoader(obj, loc)
	return pipeline.New(st, st, loader, cfg.Roster.PhoneRegion, loc), st, obj, nil
}

func initSink(ctx context.Context) (*queue.RedisSink, error) {
	return queue.Connect(ctx, queue.Options{
		URL:      cfg.Redis.URL,
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func outreachOptions() callcenter.Options {
	opts := callcenter.DefaultOptions()
	if cfg.Outreach.Threshold > 0 {
		opts.Threshold = cfg.Outreach.Threshold
	}
	if cfg.Outreach.WeeksSince > 0 {
		opts.Since = time.Duration(cfg.Outreach.WeeksSince) * 7 * 24 * time.Hour
	}
	opts.TrainingSample = cfg.Outreach.TrainingSample
	if cfg.Outreach.TestDistrict != "" {
		opts.TestDistrict = cfg.Outreach.TestDistrict
	}
	zap.L().Debug("outreach options",
		zap.Float64("threshold", opts.Threshold),
		zap.Duration("since", opts.Since),
		zap.Int("training_sample", opts.TrainingSample),
	)
	return opts
}
