package main

import (
	"flag"
	"os"
	"time"

	"github.com/bbernhard/styletransfer-playground/src/queue"
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	"github.com/bbernhard/styletransfer-playground/src/tfmodels"
	"github.com/bbernhard/styletransfer-playground/src/worker"
	"github.com/getsentry/raven-go"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetLevel(log.DebugLevel)

	log.Debug("[Main] Starting Stylize Worker...")
	redisAddress := flag.String("redis-address", ":6379", "Address to the Redis server")
	redisMaxConnections := flag.Int("redis-max-connections", 10, "Max connections to Redis")
	maxWorkerQueueSize := flag.Int("max-worker-queue-size", 100, "The size of job queue")
	maxWorkers := flag.Int("max-workers", 5, "The number of workers to start")
	modelsDir := flag.String("models-dir", "/home/playground/models/", "Location of the style and transformer networks")
	concurrentEncoding := flag.Bool("concurrent-encoding", false, "Encode content and style image in parallel")
	sentryDsn := flag.String("sentry-dsn", "", "Sentry DSN (errors are only reported if set)")

	flag.Parse()

	if *sentryDsn != "" {
		log.Debug("[Main] Setting Sentry DSN")
		if err := raven.SetDSN(*sentryDsn); err != nil {
			log.Debug("[Main] Couldn't set Sentry DSN: ", err.Error())
		}
		raven.SetTagsContext(map[string]string{"app": "stylizer"})
	}

	var opts []stylize.Option
	if *concurrentEncoding {
		opts = append(opts, stylize.WithConcurrentEncoding())
	}

	log.Debug("[Main] Loading models...")
	loader := tfmodels.NewLoader(*modelsDir, opts...)
	defer loader.Close()
	pipeline, err := loader.Pipeline()
	if err != nil {
		log.Debug("[Main] Couldn't load models: ", err.Error())
		raven.CaptureErrorAndWait(err, nil)
		os.Exit(1)
	}

	redisPool := queue.NewPool(*redisAddress, *redisMaxConnections)
	defer redisPool.Close()
	requests := queue.New(redisPool)

	log.Debug("[Main] Starting Dispatcher...")

	processor := worker.NewProcessor(pipeline, requests, loader.ModelInfo())
	jobQueue := make(chan worker.Job, *maxWorkerQueueSize)
	dispatcher := worker.NewDispatcher(jobQueue, *maxWorkers, processor)
	dispatcher.Run()
	defer dispatcher.Stop()

	for {
		stylizeRequest, err := requests.Pop()
		if err == queue.ErrEmpty {
			time.Sleep(time.Second) //nothing in queue, sleep for one sec
			continue
		}
		if err != nil {
			log.Debug("[Main] Couldn't get request: ", err.Error())
			time.Sleep(time.Second)
			continue
		}

		log.Debug("[Main] Got a new request to process")
		jobQueue <- worker.Job{StylizeRequest: stylizeRequest}
	}
}
