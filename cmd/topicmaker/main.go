package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pierregarcia1/construction-aggregator/config"
	"github.com/pierregarcia1/construction-aggregator/internal/adapter"
	"github.com/pierregarcia1/construction-aggregator/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	cleanupDelete = "delete"
	minISR        = "1"
	retentionMs   = "604800000" // 7 days
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		printFail(errors.New("broker.seed_brokers is empty"))
		return
	}

	cl := createClient(cfg)
	defer cl.Close()

	printStart(cfg)
	defer printComplete(time.Now())

	err := makeTopics(
		sigCtx, cl,
		int32(cfg.Broker.Topics.Partitions),
		int16(cfg.Broker.Topics.ReplicationFactor),
		cfg.Broker.Topics.SearchEvents,
	)
	if err != nil {
		printFail(err)
		return
	}
}

func createClient(cfg config.Config) *kadm.Client {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}
	if tlsFiles := cfg.Broker.TLS; tlsFiles.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(tlsFiles.CA, tlsFiles.Cert, tlsFiles.Key)
		if err != nil {
			panic(err) // develop mistake
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}

	cl, err := kadm.NewOptClient(opts...)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context,
	cl *kadm.Client,
	partitions int32,
	replicationFactor int16,
	topics ...string,
) error {
	cleanupPolicy := cleanupDelete
	isr := minISR
	retention := retentionMs

	topicConfig := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &isr,
		"retention.ms":        &retention,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		topicConfig,
		topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		err := res.Err
		if err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(cfg config.Config) {
	fmt.Printf(`initializing topics...
	- %q (partitions=%d, replicationFactor=%d)

`,
		cfg.Broker.Topics.SearchEvents,
		cfg.Broker.Topics.Partitions,
		cfg.Broker.Topics.ReplicationFactor,
	)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
