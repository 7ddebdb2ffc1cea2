package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bbernhard/styletransfer-playground/src/queue"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetLevel(log.DebugLevel)

	releaseMode := flag.Bool("release", false, "Run in release mode")
	redisAddress := flag.String("redis-address", ":6379", "Address to the Redis server")
	redisMaxConnections := flag.Int("redis-max-connections", 50, "Max connections to Redis")
	uploadsDir := flag.String("uploads-dir", "../uploads/", "Location of the temporary saved images")
	assetsDir := flag.String("assets-dir", "../assets/", "Location of the predefined content and style images (with assets.yml)")
	listenAddress := flag.String("listen", ":8081", "Address the API listens on")

	flag.Parse()
	if *releaseMode {
		fmt.Printf("[Main] Starting gin in release mode!\n")
		gin.SetMode(gin.ReleaseMode)
	}

	//creating uploads-dir if it not already exists
	//as uploads are temporary the directory might not already exist (e.q if uploads are stored in /tmp and server reboots)
	if _, err := os.Stat(*uploadsDir); os.IsNotExist(err) {
		log.Debug("[Main] Creating directory for uploads as it doesn't exist")
		err := os.MkdirAll(*uploadsDir, 0755)
		if err != nil {
			log.Debug("[Main] Couldn't create directory: ", err.Error())
			os.Exit(1)
		}
	}

	catalog, err := LoadCatalog(*assetsDir)
	if err != nil {
		log.Debug("[Main] Couldn't load assets: ", err.Error())
		os.Exit(1)
	}

	redisPool := queue.NewPool(*redisAddress, *redisMaxConnections)
	defer redisPool.Close()

	server := NewServer(queue.New(redisPool), catalog, *uploadsDir)
	err = server.Router().Run(*listenAddress)
	if err != nil {
		log.Debug("[Main] Couldn't start server: ", err.Error())
	}
}
