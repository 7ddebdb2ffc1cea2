package main

import (
	"encoding/base64"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/bbernhard/styletransfer-playground/src/imageio"
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

type RequestQueue interface {
	Push(request datastructures.StylizeRequest) error
	Result(uuid string) (datastructures.StylizeResult, bool, error)
}

type Server struct {
	queue      RequestQueue
	catalog    *Catalog
	uploadsDir string

	rndMutex sync.Mutex
	rnd      *rand.Rand
}

func NewServer(queue RequestQueue, catalog *Catalog, uploadsDir string) *Server {
	return &Server{
		queue:      queue,
		catalog:    catalog,
		uploadsDir: uploadsDir,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS", "GET", "PUT"},
		AllowHeaders:    []string{"Content-Type", "X-Requested-With", "X-PINGOTHER", "X-File-Name", "Cache-Control"},
		ExposeHeaders:   []string{"Location"},
	}))

	router.POST("/v1/stylize", s.postStylize)
	router.GET("/v1/stylize/:uuid", s.getStylize)
	router.GET("/v1/stylize/:uuid/image", s.getStylizedImage)
	router.GET("/v1/assets", s.getAssets)
	router.GET("/v1/randomize", s.getRandomize)

	return router
}

// imageSource resolves one of the two input images: either an upload (form
// file <kind>_image) or a catalog asset (form field <kind>).
type imageSource struct {
	header    *multipart.FileHeader
	assetPath string
}

func (s *Server) imageSource(c *gin.Context, kind string) (imageSource, int, string) {
	header, err := c.FormFile(kind + "_image")
	if err == nil {
		return imageSource{header: header}, 0, ""
	}

	name := c.PostForm(kind)
	if name == "" {
		return imageSource{}, 400, "Picture is missing (" + kind + ")"
	}
	path, ok := s.catalog.Path(kind, name)
	if !ok {
		return imageSource{}, 400, "Unknown " + kind + " image " + name
	}
	return imageSource{assetPath: path}, 0, ""
}

func formInt(c *gin.Context, field string, def int) (int, bool) {
	value := c.PostForm(field)
	if value == "" {
		return def, true
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (s *Server) postStylize(c *gin.Context) {
	content, status, msg := s.imageSource(c, assetKindContent)
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	style, status, msg := s.imageSource(c, assetKindStyle)
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	contentSize, ok := formInt(c, "content_size", imageio.DefaultContentSize)
	if !ok {
		c.JSON(400, gin.H{"error": "content_size needs to be a number"})
		return
	}
	styleSize, ok := formInt(c, "style_size", imageio.DefaultStyleSize)
	if !ok {
		c.JSON(400, gin.H{"error": "style_size needs to be a number"})
		return
	}
	styleRatio, ok := formInt(c, "style_ratio", imageio.DefaultStyleRatio)
	if !ok {
		c.JSON(400, gin.H{"error": "style_ratio needs to be a number"})
		return
	}

	u, err := uuid.NewV4()
	if err != nil {
		log.Debug("[Stylizing] Couldn't create uuid: ", err.Error())
		c.JSON(500, gin.H{"error": "Couldn't accept request - please try again later"})
		return
	}
	id := u.String()

	var stylizeRequest datastructures.StylizeRequest
	stylizeRequest.Uuid = id
	stylizeRequest.Created = int64(time.Now().Unix())
	stylizeRequest.ContentSize = imageio.ClampSize(contentSize)
	stylizeRequest.StyleSize = imageio.ClampSize(styleSize)
	stylizeRequest.StyleRatio = stylize.ClampRatio(float64(styleRatio) / 100)

	stylizeRequest.ContentFilename, stylizeRequest.ContentTemporary, err = s.store(c, content, id+"-content")
	if err == nil {
		stylizeRequest.StyleFilename, stylizeRequest.StyleTemporary, err = s.store(c, style, id+"-style")
	}
	if err == nil {
		err = s.queue.Push(stylizeRequest)
	}
	if err != nil {
		log.Debug("[Stylizing] Couldn't accept request: ", err.Error())
		s.removeUploads(stylizeRequest)
		c.JSON(500, gin.H{"error": "Couldn't accept request - please try again later"})
		return
	}

	c.Writer.Header().Set("Location", id)
	c.JSON(202, gin.H{})
}

func (s *Server) store(c *gin.Context, source imageSource, name string) (string, bool, error) {
	if source.header == nil {
		return source.assetPath, false, nil
	}

	path := filepath.Join(s.uploadsDir, name)
	if err := c.SaveUploadedFile(source.header, path); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (s *Server) removeUploads(request datastructures.StylizeRequest) {
	if request.ContentTemporary {
		os.Remove(request.ContentFilename)
	}
	if request.StyleTemporary {
		os.Remove(request.StyleFilename)
	}
}

func (s *Server) getStylize(c *gin.Context) {
	result, found, err := s.queue.Result(c.Param("uuid"))
	if err != nil {
		log.Debug("[Stylizing] Couldn't get status of request: ", err.Error())
		c.JSON(500, gin.H{"error": "Couldn't get status of request - please try again later"})
		return
	}

	if !found { //nothing available yet. Which means either the uuid is wrong or processing isn't finished.
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) getStylizedImage(c *gin.Context) {
	result, found, err := s.queue.Result(c.Param("uuid"))
	if err != nil {
		log.Debug("[Stylizing] Couldn't get status of request: ", err.Error())
		c.JSON(500, gin.H{"error": "Couldn't get status of request - please try again later"})
		return
	}

	if !found {
		c.JSON(404, gin.H{"error": "Image not available (yet)"})
		return
	}
	if result.Error != "" {
		c.JSON(422, gin.H{"error": result.Error})
		return
	}

	data, err := base64.StdEncoding.DecodeString(result.Image)
	if err != nil {
		log.Debug("[Stylizing] Couldn't decode stored image: ", err.Error())
		c.JSON(500, gin.H{"error": "Couldn't get image - please try again later"})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) getAssets(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Names())
}

func (s *Server) getRandomize(c *gin.Context) {
	s.rndMutex.Lock()
	settings := imageio.RandomSettings(s.rnd)
	s.rndMutex.Unlock()

	c.JSON(http.StatusOK, settings)
}
