package worker

import (
	"encoding/base64"
	"os"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/bbernhard/styletransfer-playground/src/imageio"
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	"github.com/getsentry/raven-go"
	log "github.com/sirupsen/logrus"
)

type Stylizer interface {
	Stylize(content *stylize.Image, style *stylize.Image, ratio float64) (*stylize.Image, error)
}

type ResultStore interface {
	StoreResult(result datastructures.StylizeResult) error
}

// Processor turns one stylize request into a stored result.
type Processor struct {
	stylizer  Stylizer
	store     ResultStore
	modelInfo []datastructures.ModelInfo
	report    func(err error, tags map[string]string)
}

func NewProcessor(stylizer Stylizer, store ResultStore, modelInfo []datastructures.ModelInfo) *Processor {
	return &Processor{
		stylizer:  stylizer,
		store:     store,
		modelInfo: modelInfo,
		report: func(err error, tags map[string]string) {
			raven.CaptureError(err, tags)
		},
	}
}

func (p *Processor) Process(request datastructures.StylizeRequest) datastructures.StylizeResult {
	ratio := stylize.ClampRatio(request.StyleRatio)
	result := datastructures.StylizeResult{
		Uuid:       request.Uuid,
		StyleRatio: ratio,
		ModelInfo:  p.modelInfo,
	}

	stylized, err := p.stylize(request, ratio)
	if err != nil {
		log.Debug("[Worker] Couldn't stylize: ", err.Error())
		p.report(err, map[string]string{"uuid": request.Uuid})
		result.Error = err.Error()
	} else {
		result.Image = base64.StdEncoding.EncodeToString(stylized.png)
		result.Width = stylized.width
		result.Height = stylized.height
	}

	err = p.store.StoreResult(result)
	if err != nil {
		log.Debug("[Worker] Couldn't store result: ", err.Error())
		p.report(err, map[string]string{"uuid": request.Uuid})
	}

	p.removeUploads(request)
	return result
}

type encodedImage struct {
	png    []byte
	width  int
	height int
}

func (p *Processor) stylize(request datastructures.StylizeRequest, ratio float64) (*encodedImage, error) {
	content, err := loadImage(request.ContentFilename, request.ContentSize)
	if err != nil {
		return nil, &stylize.EncodingError{Input: "content", Err: err}
	}
	style, err := loadImage(request.StyleFilename, request.StyleSize)
	if err != nil {
		return nil, &stylize.EncodingError{Input: "style", Err: err}
	}

	stylized, err := p.stylizer.Stylize(content, style, ratio)
	if err != nil {
		return nil, err
	}

	data, err := imageio.EncodePNG(stylized.ToImage())
	if err != nil {
		return nil, err
	}
	return &encodedImage{png: data, width: stylized.Width, height: stylized.Height}, nil
}

func loadImage(filename string, size int) (*stylize.Image, error) {
	img, err := imageio.Open(filename)
	if err != nil {
		return nil, err
	}
	return stylize.FromImage(imageio.ResizeToHeight(img, size)), nil
}

// removeUploads deletes uploaded images. Catalog assets stay.
func (p *Processor) removeUploads(request datastructures.StylizeRequest) {
	if request.ContentTemporary {
		if err := os.Remove(request.ContentFilename); err != nil {
			log.Debug("[Worker] Couldn't remove file ", err.Error())
		}
	}
	if request.StyleTemporary {
		if err := os.Remove(request.StyleFilename); err != nil {
			log.Debug("[Worker] Couldn't remove file ", err.Error())
		}
	}
}
