package tfmodels

import (
	"path/filepath"
	"sync"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/bbernhard/styletransfer-playground/src/stylize"
	log "github.com/sirupsen/logrus"
)

const (
	styleModelDir       = "style"
	transformerModelDir = "transformer"
)

// Loader loads the style and the transformer network once and hands out a
// pipeline built on top of them.
type Loader struct {
	modelsDir string
	opts      []stylize.Option
	loadModel func(basePath string) (*Model, error)

	once        sync.Once
	style       *Model
	transformer *Model
	pipeline    *stylize.Pipeline
	err         error
}

func NewLoader(modelsDir string, opts ...stylize.Option) *Loader {
	return &Loader{
		modelsDir: modelsDir,
		opts:      opts,
		loadModel: LoadModel,
	}
}

// Pipeline loads the models on first use. Later calls return the same
// pipeline (or the same error).
func (l *Loader) Pipeline() (*stylize.Pipeline, error) {
	l.once.Do(l.load)
	return l.pipeline, l.err
}

func (l *Loader) load() {
	log.Debug("[Loader] Loading models from ", l.modelsDir)

	style, err := l.loadModel(filepath.Join(l.modelsDir, styleModelDir))
	if err != nil {
		log.Debug("[Loader] Couldn't load style network: ", err.Error())
		l.err = err
		return
	}
	transformer, err := l.loadModel(filepath.Join(l.modelsDir, transformerModelDir))
	if err != nil {
		log.Debug("[Loader] Couldn't load transformer network: ", err.Error())
		style.Close()
		l.err = err
		return
	}

	encoder, err := NewStyleEncoder(style)
	if err == nil {
		var t *Transformer
		t, err = NewTransformer(transformer)
		if err == nil {
			opts := l.opts
			if shape := style.Info().OutputShape; len(shape) > 0 {
				opts = append([]stylize.Option{stylize.WithBottleneckShape(shape)}, opts...)
			}
			l.pipeline = stylize.NewPipeline(encoder, t, opts...)
		}
	}
	if err != nil {
		style.Close()
		transformer.Close()
		l.err = err
		return
	}

	l.style = style
	l.transformer = transformer
}

// ModelInfo describes the loaded networks, style network first.
func (l *Loader) ModelInfo() []datastructures.ModelInfo {
	if l.style == nil || l.transformer == nil {
		return nil
	}
	return []datastructures.ModelInfo{l.style.Info(), l.transformer.Info()}
}

func (l *Loader) Close() {
	if l.style != nil {
		l.style.Close()
	}
	if l.transformer != nil {
		l.transformer.Close()
	}
}
